package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/pflag"

	"github.com/brendan.keane/urlquery/internal/config"
	"github.com/brendan.keane/urlquery/internal/errors"
	"github.com/brendan.keane/urlquery/internal/gateway"
	"github.com/brendan.keane/urlquery/internal/logger"
)

func main() {
	// No command line on Lambda; flag defaults fall back to URLQ_* variables
	flags := pflag.NewFlagSet("urlq-lambda", pflag.ContinueOnError)
	config.RegisterFlags(flags)

	cfg, err := config.LoadFromFlags(flags)
	if err != nil {
		errors.PresentError(err)
		os.Exit(1)
	}

	log := logger.InitLogger(&logger.Config{
		Level:  envOr("URLQ_LOG_LEVEL", "info"),
		Format: "json",
		Output: os.Stdout,
	})

	handler, err := gateway.NewHandler(log, cfg)
	if err != nil {
		errors.PresentError(err)
		os.Exit(1)
	}

	lambda.Start(handler.Handle)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
