package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms/openai"

	"med-scraper/pkg/config"
	"med-scraper/pkg/coverage"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel)

	configFileFlag := flag.String("config", "", "Path to YAML config file (defaults apply when empty)")
	logLevelFlag := flag.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevelFlag)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'. Error: %v", *logLevelFlag, err)
	} else {
		log.SetLevel(level)
	}

	cfg, err := config.Load(*configFileFlag)
	if err != nil {
		log.Fatalf("Config load error: %v", err)
	}
	warnings, err := cfg.Validate()
	if err != nil {
		log.Fatalf("Config validation error: %v", err)
	}
	for _, w := range warnings {
		log.Warn(w)
	}

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Fatal("OPENAI_API_KEY environment variable must be set")
	}
	llm, err := openai.New(openai.WithModel(cfg.LLMModel))
	if err != nil {
		log.Fatalf("Failed to initialize language model client: %v", err)
	}

	runLog := log.WithField("run_id", uuid.NewString())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	validator := coverage.NewValidator(cfg, llm, runLog)
	results, err := validator.ValidateCoverage(ctx)
	if err != nil {
		runLog.Errorf("Coverage validation failed: %v", err)
		os.Exit(1)
	}
	reportPath, err := validator.GenerateReport(results)
	if err != nil {
		runLog.Errorf("Report generation failed: %v", err)
		os.Exit(1)
	}
	runLog.Infof("Report generated. See %s for the full analysis.", reportPath)
}
