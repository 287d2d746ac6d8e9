package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"github.com/imrishuroy/go-rental-billing/internal/app"
	"github.com/imrishuroy/go-rental-billing/internal/config"
	"github.com/imrishuroy/go-rental-billing/internal/handlers"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	a, err := app.New(ctx, cfg, "api", logger)
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}
	defer a.Close()

	r := handlers.NewRouter(a.HandlerConfig())

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if cfg.RunLocal {
		if err := a.DB.Migrate(ctx); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
		logger.Info("running local server", "addr", cfg.ListenAddr)
		if err := r.Run(cfg.ListenAddr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
