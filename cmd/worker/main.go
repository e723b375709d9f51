package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/paybridge/payment-orchestrator/internal/adapter/secondary/database"
	"github.com/paybridge/payment-orchestrator/internal/adapter/secondary/gateway"
	"github.com/paybridge/payment-orchestrator/internal/adapter/secondary/messaging"
	"github.com/paybridge/payment-orchestrator/internal/config"
	"github.com/paybridge/payment-orchestrator/internal/constant/model/db"
	"github.com/paybridge/payment-orchestrator/internal/core"
	"github.com/paybridge/payment-orchestrator/internal/core/service"
	"github.com/paybridge/payment-orchestrator/internal/port/output"
)

// The worker consumes payment.created events and runs the same verification
// flow the API exposes, so freshly created payments converge to a terminal
// status without polling clients.
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

	dbConn, err := db.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer dbConn.Close()

	repo := database.NewGormTransactionRepository(dbConn.DB)

	msgClient, err := messaging.NewRabbitMQClientConcrete(cfg.AMQPURL, log)
	if err != nil {
		log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer msgClient.Close()

	registry := buildRegistry(cfg, log)
	if registry.Len() == 0 {
		log.Fatal("no payment gateways could be registered; check credentials")
	}

	resolver := service.NewResolver(repo, cfg.DefaultProvider, log)
	payments := service.NewPaymentService(registry, resolver, repo, nil, log, cfg.GatewayTimeout)
	processor := service.NewVerificationProcessor(payments, log)

	err = msgClient.ConsumePaymentEvents(func(evt output.PaymentEvent) error {
		return processor.Process(context.Background(), evt.Reference)
	})
	if err != nil {
		log.Fatal("failed to start consuming events", zap.Error(err))
	}

	log.Info("payment worker started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker")
}

// buildRegistry mirrors the API server's fail-open registration.
func buildRegistry(cfg config.Config, log *zap.Logger) *service.Registry {
	node, err := snowflake.NewNode(2)
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
	return registry
}
