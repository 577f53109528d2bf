package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"med-scraper/pkg/config"
	"med-scraper/pkg/crawler"
	"med-scraper/pkg/fetch"
	"med-scraper/pkg/pdf"
	"med-scraper/pkg/storage"
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
	log.Infof("Config: Base:%s, Site:%s, OutputDir:%s, StateDir:%s",
		cfg.BaseURL, cfg.SiteKey, cfg.OutputBaseDir, cfg.StateDir)
	log.Infof("Config: CourtesyDelay:%v, Cooldown:%v, Retries: Max:%d, InitialDelay:%v, MaxDelay:%v",
		cfg.CourtesyDelay, cfg.RateLimitCooldown, cfg.MaxRetries, cfg.InitialRetryDelay, cfg.MaxRetryDelay)

	runLog := log.WithField("run_id", uuid.NewString())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		sig := <-sigChan
		runLog.Warnf("Received signal: %v. Initiating graceful shutdown...", sig)
		cancel()
		select {
		case sig = <-sigChan:
			runLog.Warnf("Received second signal: %v. Forcing exit.", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			runLog.Warn("Graceful shutdown period exceeded after signal. Forcing exit.")
			os.Exit(1)
		}
	}()

	runLog.Info("Initializing components...")

	ledger, err := storage.NewBadgerLedger(cfg.StateDir, runLog)
	if err != nil {
		runLog.Fatalf("Failed to initialize PDF ledger: %v", err)
	}
	defer ledger.Close()

	httpClient := fetch.NewClient(cfg.HTTPClientSettings, log)
	knownPaths := fetch.NewKnownPaths(cfg.SeedPaths)
	fetcher, err := fetch.NewFetcher(httpClient, cfg, knownPaths, runLog)
	if err != nil {
		runLog.Fatalf("Failed to initialize fetcher: %v", err)
	}

	downloader, err := pdf.NewDownloader(cfg, httpClient, ledger, runLog)
	if err != nil {
		runLog.Fatalf("Failed to initialize PDF downloader: %v", err)
	}

	writer := crawler.NewWriter(cfg, runLog)
	c, err := crawler.NewCrawler(cfg, fetcher, writer, downloader, runLog)
	if err != nil {
		runLog.Fatalf("Failed to initialize crawler: %v", err)
	}

	err = c.Run(ctx)
	switch {
	case err == nil:
		runLog.Info("Crawl completed successfully.")
	case errors.Is(err, context.Canceled):
		runLog.Warn("Crawl cancelled gracefully.")
	default:
		runLog.Errorf("Crawl finished with error: %v", err)
		os.Exit(1)
	}
}
