package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"med-scraper/pkg/config"
	"med-scraper/pkg/pdf"
	"med-scraper/pkg/process"
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

	if err := process.InitTokenizer(cfg.TokenizerEncoding); err != nil {
		log.Warnf("Tokenizer init failed (%v), chunk sizing falls back to a character estimate", err)
	}

	runLog := log.WithField("run_id", uuid.NewString())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	processor := pdf.NewProcessor(cfg, runLog)
	results, err := processor.ProcessAll(ctx)
	if err != nil {
		runLog.Errorf("PDF processing failed: %v", err)
		os.Exit(1)
	}
	if len(results.FailedFiles) > 0 {
		runLog.Warnf("PDF processing finished with %d failures", len(results.FailedFiles))
	}
}
