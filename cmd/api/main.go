package main

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handler "github.com/paybridge/payment-orchestrator/internal/adapter/primary/http"
	"github.com/paybridge/payment-orchestrator/internal/adapter/secondary/database"
	"github.com/paybridge/payment-orchestrator/internal/adapter/secondary/gateway"
	"github.com/paybridge/payment-orchestrator/internal/adapter/secondary/messaging"
	"github.com/paybridge/payment-orchestrator/internal/config"
	"github.com/paybridge/payment-orchestrator/internal/constant/model/db"
	"github.com/paybridge/payment-orchestrator/internal/core"
	"github.com/paybridge/payment-orchestrator/internal/core/service"
	"github.com/paybridge/payment-orchestrator/internal/port/output"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	// Initialize secondary adapter: Database
	dbConn, err := db.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer dbConn.Close()

	// Initialize secondary adapters: Repository and Messaging (implement output ports)
	repo := database.NewGormTransactionRepository(dbConn.DB)
	events, err := messaging.NewRabbitMQClient(cfg.AMQPURL, log)
	if err != nil {
		log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer events.Close()

	registry := buildRegistry(cfg, log)
	if registry.Len() == 0 {
		log.Fatal("no payment gateways could be registered; check credentials")
	}

	// Initialize core service (implements input port)
	resolver := service.NewResolver(repo, cfg.DefaultProvider, log)
	payments := service.NewPaymentService(registry, resolver, repo, events, log, cfg.GatewayTimeout)

	// Initialize primary adapters: HTTP handlers (use input port)
	paymentHandler := handler.NewPaymentHandler(payments)
	webhookHandler := handler.NewWebhookHandler(payments)

	// Initialize Echo
	e := echo.New()
	e.Validator = handler.NewRequestValidator()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Routes
	api := e.Group("/api/v1")
	api.POST("/payments", paymentHandler.CreatePayment)
	api.GET("/payments", paymentHandler.ListPayments)
	api.GET("/payments/verify", paymentHandler.VerifyPayment)
	api.POST("/payments/refund", paymentHandler.RefundPayment)
	api.POST("/payment-methods", paymentHandler.SavePaymentMethod)
	api.POST("/webhooks", webhookHandler.HandleWebhook)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info("starting API server", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

// buildRegistry constructs an adapter per enabled provider with credentials.
// One adapter failing to construct is logged and skipped, never fatal: the
// remaining gateways still register (fail-open).
func buildRegistry(cfg config.Config, log *zap.Logger) *service.Registry {
	node, err := snowflake.NewNode(1)
	if err != nil {
		log.Fatal("failed to create snowflake node", zap.Error(err))
	}

	var gateways []output.Gateway
	if cfg.Enabled(core.ProviderPaystack) && cfg.Paystack.SecretKey != "" {
		gw, err := gateway.NewPaystackGateway(cfg.Paystack.SecretKey, cfg.Paystack.BaseURL, node, cfg.GatewayTimeout, log)
		if err != nil {
			log.Warn("skipping paystack gateway", zap.Error(err))
		} else {
			gateways = append(gateways, gw)
		}
	}
	if cfg.Enabled(core.ProviderFlutterwave) && cfg.Flutterwave.SecretKey != "" {
		gw, err := gateway.NewFlutterwaveGateway(cfg.Flutterwave.SecretKey, cfg.Flutterwave.BaseURL, node, cfg.GatewayTimeout, log)
		if err != nil {
			log.Warn("skipping flutterwave gateway", zap.Error(err))
		} else {
			gateways = append(gateways, gw)
		}
	}

	registry, errs := service.NewRegistry(gateways...)
	for _, err := range errs {
		log.Warn("gateway registration failed", zap.Error(err))
	}
	log.Info("gateway registry built", zap.Int("gateways", registry.Len()))
	return registry
}
