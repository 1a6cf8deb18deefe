package main

import (
	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/gateway"
	"github.com/Greninja7505/GreenForge/internal/logger"
	"github.com/Greninja7505/GreenForge/internal/notify"
	"github.com/Greninja7505/GreenForge/internal/oracle"
	"github.com/Greninja7505/GreenForge/internal/router"
	"github.com/Greninja7505/GreenForge/internal/store"
	"github.com/Greninja7505/GreenForge/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	level := logger.ParseLogLevel(cfg.Log.GetLevel())
	var l *logger.Logger
	var err error
	if cfg.Log.GetOutput() == "file" {
		l, err = logger.NewWithFileRotation(level, cfg.Log.GetFile())
	} else {
		l, err = logger.New(level)
	}
	if err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(l)
	defer logger.Sync()

	// 初始化数据库
	db, err := store.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}
	st := store.New(db)

	// 初始化合约网关与验证预言机
	gw := gateway.NewStellarGateway(cfg.Stellar)
	o := oracle.New(cfg)

	// 初始化通知分发器
	notifier, err := notify.NewPoolNotifier(st, cfg.Oracle.Workers)
	if err != nil {
		logger.Fatal("Failed to initialize notifier: %v", err)
	}
	defer notifier.Release()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(st, gw, o, notifier, cfg)

	// 启动定时任务
	manager := task.Start(st, gw, notifier, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
