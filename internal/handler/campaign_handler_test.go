package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Greninja7505/GreenForge/internal/config"
	"github.com/Greninja7505/GreenForge/internal/gateway"
	"github.com/Greninja7505/GreenForge/internal/logic"
	"github.com/Greninja7505/GreenForge/internal/notify"
	"github.com/Greninja7505/GreenForge/internal/store"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func newCampaignHandler(t *testing.T) *CampaignHandler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
		NamingStrategy: &schema.NamingStrategy{SingularTable: true},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	st := store.New(db)
	gw := gateway.NewMockGateway()
	cfg := &config.Config{}
	return NewCampaignHandler(
		logic.NewCampaignLogic(st, gw, cfg),
		logic.NewContributeLogic(st, gw, notify.NopNotifier{}, cfg),
	)
}

func TestGetCampaignsClampsPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newCampaignHandler(t)

	tests := []struct {
		name  string
		query string
	}{
		{"zero page size", "?page_size=0"},
		{"negative page size", "?page_size=-5"},
		{"negative page", "?page=-3&page_size=0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/v2/campaigns"+tt.query, nil)

			h.GetCampaigns(c)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			var resp struct {
				Data struct {
					Pagination Pagination `json:"pagination"`
				} `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Data.Pagination.Page < 1 || resp.Data.Pagination.PageSize < 1 {
				t.Errorf("pagination not clamped: %+v", resp.Data.Pagination)
			}
		})
	}
}
