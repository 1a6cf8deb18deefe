package router

import (
	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/gateway"
	"github.com/Greninja7505/GreenForge/internal/handler"
	"github.com/Greninja7505/GreenForge/internal/logic"
	"github.com/Greninja7505/GreenForge/internal/notify"
	"github.com/Greninja7505/GreenForge/internal/oracle"
	"github.com/Greninja7505/GreenForge/internal/store"
	"github.com/Greninja7505/GreenForge/internal/voting"
	"github.com/gin-gonic/gin"
)

func Setup(st *store.Store, gw gateway.Gateway, o oracle.Oracle, n notify.Notifier, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "greenforge",
		})
	})

	engine := voting.NewEngine(st, cfg)
	campaignLogic := logic.NewCampaignLogic(st, gw, cfg)
	contributeLogic := logic.NewContributeLogic(st, gw, n, cfg)
	milestoneLogic := logic.NewMilestoneLogic(st, gw, o, n, cfg)
	releaseLogic := logic.NewReleaseLogic(st, gw, engine, n, cfg)
	refundLogic := logic.NewRefundLogic(st, gw, n, cfg)
	sbtLogic := logic.NewSbtLogic(st, gw, cfg)

	// API版本组
	v2 := r.Group("/api/v2")
	{
		// 活动相关路由
		campaignHandler := handler.NewCampaignHandler(campaignLogic, contributeLogic)
		campaigns := v2.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.POST("/:id/fund", campaignHandler.FundCampaign)
			campaigns.POST("/:id/close", campaignHandler.CloseCampaign)
			campaigns.POST("/:id/cancel", campaignHandler.CancelCampaign)
			campaigns.GET("/:id/backers/:address", campaignHandler.GetBacker)
		}

		// 里程碑相关路由
		milestoneHandler := handler.NewMilestoneHandler(milestoneLogic, releaseLogic, engine, st)
		milestones := v2.Group("/campaigns/:id/milestones")
		{
			milestones.GET("/:mid", milestoneHandler.GetMilestone)
			milestones.POST("/:mid/proof", milestoneHandler.SubmitProof)
			milestones.POST("/:mid/ai-verdict", milestoneHandler.SubmitVerdict)
			milestones.POST("/:mid/vote", milestoneHandler.CastVote)
			milestones.GET("/:mid/votes", milestoneHandler.GetVotes)
			milestones.POST("/:mid/release", milestoneHandler.ReleaseFunds)
		}

		// SBT声誉相关路由
		sbtHandler := handler.NewSbtHandler(sbtLogic)
		sbt := v2.Group("/sbt")
		{
			sbt.POST("/mint", sbtHandler.MintSbt)
			sbt.GET("/profile/:address", sbtHandler.GetProfile)
			sbt.GET("/reputation/:address", sbtHandler.GetReputation)
		}

		// 管理相关路由
		adminHandler := handler.NewAdminHandler(refundLogic, cfg)
		admin := v2.Group("/admin")
		{
			admin.POST("/refund/:id", adminHandler.RefundCampaign)
			admin.GET("/config", adminHandler.GetConfig)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
