package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ChrisGrossi/sportsbet/internal/alert"
	"github.com/ChrisGrossi/sportsbet/internal/config"
	"github.com/ChrisGrossi/sportsbet/internal/pipeline"
	"github.com/ChrisGrossi/sportsbet/internal/sink"
)

func main() {
	serve := flag.Bool("serve", false, "run an HTTP server and collect on POST /run")
	cronSpec := flag.String("cron", "", "run on a cron schedule, e.g. \"0 */4 * * *\"")
	historic := flag.Bool("historic", false, "collect completed games into the warehouse and exit")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.NewEntry(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *historic {
		if err := runHistoric(ctx, cfg, log); err != nil {
			log.Fatalf("historic collection failed: %v", err)
		}
		return
	}

	p, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		log.Fatalf("failed to build pipeline: %v", err)
	}

	switch {
	case *serve:
		runServer(ctx, cfg, p, log)
	case *cronSpec != "":
		runCron(ctx, *cronSpec, p, log)
	default:
		if err := p.Run(ctx); err != nil {
			log.Fatalf("collection run failed: %v", err)
		}
	}
}

// buildPipeline assembles the sinks and notifier the configuration
// enables. The spreadsheet is the primary destination; a failure to
// authenticate against it is the one fatal setup error.
func buildPipeline(ctx context.Context, cfg *config.Config, log *logrus.Entry) (*pipeline.Pipeline, error) {
	var writers []sink.TabularWriter

	if cfg.Sheets.CredentialsFile != "" {
		sheetsWriter, err := sink.NewSheetsWriter(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetKey, log)
		if err != nil {
			return nil, fmt.Errorf("sheets sink: %w", err)
		}
		writers = append(writers, sheetsWriter)
	}

	if cfg.Warehouse.DSN != "" {
		warehouseWriter, err := sink.NewWarehouseWriter(cfg.Warehouse.DSN, log)
		if err != nil {
			log.Errorf("warehouse sink unavailable, continuing without it: %v", err)
		} else {
			writers = append(writers, warehouseWriter)
		}
	}

	if len(writers) == 0 {
		return nil, fmt.Errorf("no sinks configured")
	}

	var notifier *alert.SlackNotifier
	if cfg.Alerts.SlackWebhookURL != "" {
		notifier = alert.NewSlackNotifier(cfg.Alerts.SlackWebhookURL, log)
	}

	return pipeline.New(cfg, writers, notifier, log)
}

// runHistoric collects completed games into the warehouse only; the
// spreadsheet holds upcoming-game snapshots and stays untouched
func runHistoric(ctx context.Context, cfg *config.Config, log *logrus.Entry) error {
	if cfg.Warehouse.DSN == "" {
		return fmt.Errorf("historic mode requires a warehouse DSN")
	}

	warehouseWriter, err := sink.NewWarehouseWriter(cfg.Warehouse.DSN, log)
	if err != nil {
		return fmt.Errorf("warehouse sink: %w", err)
	}
	defer warehouseWriter.Close()

	p, err := pipeline.New(cfg, []sink.TabularWriter{warehouseWriter}, nil, log)
	if err != nil {
		return err
	}
	return p.RunHistoric(ctx)
}

// runServer exposes the pipeline behind an HTTP trigger. POST /run
// starts a collection cycle; an overlapping trigger gets a 409.
func runServer(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, log *logrus.Entry) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/run", func(w http.ResponseWriter, req *http.Request) {
		if err := p.Run(req.Context()); err != nil {
			if err == pipeline.ErrRunInProgress {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("run complete"))
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-shutdownSignal(ctx)
		log.Info("shutting down server")
		server.Shutdown(context.Background())
	}()

	log.WithField("addr", addr).Info("listening for collection triggers")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

// runCron runs the pipeline on a schedule until interrupted
func runCron(ctx context.Context, spec string, p *pipeline.Pipeline, log *logrus.Entry) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := p.Run(ctx); err != nil {
			log.Errorf("scheduled run failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("invalid cron spec %q: %v", spec, err)
	}

	log.WithField("spec", spec).Info("scheduling collection runs")
	c.Start()

	<-shutdownSignal(ctx)
	log.Info("stopping scheduler")
	stopCtx := c.Stop()
	<-stopCtx.Done()
}

func shutdownSignal(ctx context.Context) <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		sigChan <- syscall.SIGTERM
	}()
	return sigChan
}
