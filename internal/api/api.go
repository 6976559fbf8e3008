package api

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/launchkite/launchkite/internal/analytics"
	"github.com/launchkite/launchkite/internal/secrets"
	"github.com/launchkite/launchkite/internal/stores/campaign"
	"github.com/launchkite/launchkite/internal/stores/credential"
	"github.com/launchkite/launchkite/internal/stores/user"
	"github.com/launchkite/launchkite/internal/tokens"
	"github.com/launchkite/launchkite/pkg/sdk"
	"github.com/launchkite/launchkite/pkg/utils"

	auth_module "github.com/launchkite/launchkite/internal/api/modules/auth"
	campaigns_module "github.com/launchkite/launchkite/internal/api/modules/campaigns"
	canva_module "github.com/launchkite/launchkite/internal/api/modules/canva"
	health_module "github.com/launchkite/launchkite/internal/api/modules/health"
	integrations_module "github.com/launchkite/launchkite/internal/api/modules/integrations"
)

func Start(cfg *utils.Config) {
	// Initialized configuration settings
	port := cfg.GetWithDefault("API_PORT", "8080")

	// One database connection shared by every store
	db, err := gorm.Open(mysql.Open(cfg.Get("MYSQL_URL")), &gorm.Config{})
	if err != nil {
		log.Fatal("[API-MAIN]: Failed to connect to database: ", err)
	}

	users, err := user.NewMySqlStoreWithDB(db)
	if err != nil {
		log.Fatal("[API-MAIN]: Failed to create user store: ", err)
	}

	creds, err := credential.NewMySqlStoreWithDB(db)
	if err != nil {
		log.Fatal("[API-MAIN]: Failed to create credential store: ", err)
	}

	campaigns, err := campaign.NewMySqlStoreWithDB(db)
	if err != nil {
		log.Fatal("[API-MAIN]: Failed to create campaign store: ", err)
	}

	// Credentials are encrypted at rest; the key comes from config
	box, err := secrets.NewBox(cfg.Get("SECRETS_KEY"))
	if err != nil {
		log.Fatal("[API-MAIN]: Failed to create secrets box: ", err)
	}

	manager := tokens.NewManager(creds, box)

	// Add app level settings/routes
	engine := gin.Default()
	engine.NoRoute(noRouteHandler)

	// Add trusted proxies
	engine.SetTrustedProxies(nil)

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.GetWithDefault("CORS_ALLOWED_ORIGINS", "*"), ","),
		AllowMethods:     []string{"OPTIONS", "GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Base group '/api' for all API routes
	baseGroup := engine.Group("/api")

	// Adding custom modules
	health_module.RegisterRoutes(baseGroup)

	auth_module.RegisterRoutes(baseGroup)
	auth_module.Init(users)

	integrations_module.RegisterRoutes(baseGroup)
	integrations_module.Init(cfg, manager, creds)

	canva_module.RegisterRoutes(baseGroup)
	canva_module.Init(manager)

	campaigns_module.RegisterRoutes(baseGroup)
	campaigns_module.Init(cfg, campaigns, manager)

	// Background analytics refresh for sent campaigns
	if cfg.GetBoolWithDefault("ANALYTICS_SYNC_ENABLED", true) {
		refresher := analytics.NewRefresher(campaigns,
			func(ctx context.Context, userID, campaignID string) error {
				_, err := campaigns_module.GetService().SyncAnalytics(ctx, userID, campaignID)
				return err
			},
			cfg.GetWithDefault("ANALYTICS_SYNC_CRON", "@hourly"),
		)
		if err := refresher.Start(); err != nil {
			log.Fatal("[API-MAIN]: Failed to start analytics refresher: ", err)
		}
	}

	// Then after performing initial setup, start the server
	if err := engine.Run(":" + port); err != nil {
		log.Fatal("[API-MAIN]: Failed to start server: ", err)
	}
}

// noRouteHandler returns the standard error envelope for unknown paths
func noRouteHandler(c *gin.Context) {
	c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "Route not found", nil).AsGinResponse())
}
