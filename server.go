package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/middlewares"
	"github.com/norteapps/cartera_backend/models"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

const defaultPort = "8080"

var tracer = otel.Tracer("cartera-backend")

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func registerRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	auth := r.Group("/auth")
	{
		auth.POST("/signup", signUpHandler)
		auth.POST("/login", loginHandler)
	}

	// Authenticated but not subscription-gated: an expired tenant still
	// needs to see and manage its subscription.
	account := r.Group("/", middlewares.RequireOrganization())
	{
		account.GET("/subscription", getSubscriptionHandler)
		account.POST("/subscription/cancel", cancelSubscriptionHandler)
	}

	api := r.Group("/", middlewares.RequireOrganization(), middlewares.SubscriptionMiddleware())
	{
		api.GET("/suppliers", listSuppliersHandler)
		api.POST("/suppliers", createSupplierHandler)
		api.PUT("/suppliers/:id", updateSupplierHandler)
		api.DELETE("/suppliers/:id", deleteSupplierHandler)

		api.GET("/master-account", getMasterAccountHandler)
		api.PUT("/master-account", upsertMasterAccountHandler)

		api.GET("/branches", listBranchesHandler)
		api.POST("/branches", createBranchHandler)
		api.PUT("/branches/:id", updateBranchHandler)

		api.GET("/invoices", listInvoicesHandler)
		api.POST("/invoices", createInvoiceHandler)
		api.GET("/invoices/:id", getInvoiceHandler)
		api.PUT("/invoices/:id", updateInvoiceHandler)
		api.DELETE("/invoices/:id", deleteInvoiceHandler)

		api.POST("/payments", registerPaymentHandler)
		api.PUT("/payments/:id", editPaymentHandler)
		api.POST("/payments/bulk", bulkPaymentHandler)
		api.POST("/adjustments", createAdjustmentHandler)
		api.GET("/movements", listMovementsHandler)
		api.DELETE("/movements/:id", deleteMovementHandler)

		api.GET("/sales", listSalesHandler)
		api.POST("/sales", createSaleHandler)
		api.PUT("/sales/:id", updateSaleHandler)
		api.DELETE("/sales/:id", deleteSaleHandler)

		api.GET("/balance", balanceHandler)
		api.GET("/calendar/:year/:month", calendarHandler)
		api.GET("/days/:date", dayDetailHandler)

		api.GET("/reports/movements", movementReportHandler)
		api.GET("/reports/movements/export", movementReportExportHandler)
		api.GET("/reports/invoices", invoiceReportHandler)
		api.GET("/reports/sales/by-branch", salesByBranchReportHandler)
		api.GET("/reports/sales/daily", dailySalesReportHandler)
		api.GET("/reports/sales/alerts", salesAlertsReportHandler)
	}
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the platform considers the revision
	// healthy. Until the DB is ready, app endpoints return 503.
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(middlewares.AuthMiddleware())
	r.Use(gin.Recovery())

	registerRoutes(r)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	// AutoMigrate can run DDL that blocks tables; allow running migrations
	// as a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		if err := models.Migrate(db); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Panic(err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	select {
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			config.LogError(logger, "server.go", "main", "srv.Shutdown", nil, err)
		}
	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			logger.WithFields(logrus.Fields{"field": "http server"}).Panic(err.Error())
		}
	}
}
