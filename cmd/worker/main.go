package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imrishuroy/go-rental-billing/internal/app"
	"github.com/imrishuroy/go-rental-billing/internal/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	a, err := app.New(ctx, cfg, "worker", logger)
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}
	defer a.Close()

	var counter Counter
	if a.Metrics != nil {
		counter = a.Metrics
	}
	p := NewProcessor(a.Renderer, counter, logger)

	// If RUN_LOCAL=true, process a single simulated SQS event and exit.
	if cfg.RunLocal {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			log.Fatalf("RUN_LOCAL needs LOCAL_SQS_BODY, e.g. {\"order_id\":1,\"total\":\"450\"}")
		}
		resp, err := p.Handle(ctx, lambdaevents.SQSEvent{
			Records: []lambdaevents.SQSMessage{{MessageId: "local-1", Body: body}},
		})
		if err != nil || len(resp.BatchItemFailures) > 0 {
			log.Fatalf("local handler failed: %v", err)
		}
		return
	}

	lambda.Start(p.Handle)
}
