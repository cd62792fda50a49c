package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shift-crm/internal/config"
	"shift-crm/internal/service/earnings"
	generate_excel "shift-crm/internal/service/generate-excel"
	"shift-crm/internal/service/report"
	"shift-crm/internal/service/shift"
	"shift-crm/internal/service/sweep"
	"shift-crm/internal/storage/mysql"
	"shift-crm/internal/storage/redis"
	"shift-crm/internal/storage/tiered"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type services struct {
	shifts  *shift.Service
	reports *report.Service
	excel   *generate_excel.GenerateExcelService
	sweep   *sweep.Task
}

func main() {
	cfg := config.MustConfig()

	log := setupLogger(cfg.Env, cfg.ErrorLog)

	primary, err := mysql.New(*cfg)
	if err != nil {
		log.Error("failed to open db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer primary.Close()

	fallback, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer fallback.Close()

	store := tiered.New(primary, fallback, log)

	calc := earnings.NewCalculator(earnings.Rates{
		TokensPerDollar: cfg.Business.TokensPerDollar,
		SoloDivisor:     cfg.Business.SoloDivisor,
		PairDivisor:     cfg.Business.PairDivisor,
	})

	reports := report.NewService(store, calc, cfg.Business.DefaultExchangeRate)
	svc := services{
		shifts:  shift.NewService(store, calc),
		reports: reports,
		excel:   generate_excel.NewGenerateService(reports),
		sweep:   sweep.NewTask(store, log),
	}

	if cfg.Sweep.Enabled {
		if err := svc.sweep.Start(cfg.Sweep.Spec); err != nil {
			log.Error("failed to schedule sweep", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer svc.sweep.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(*cfg, log, store, svc),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server started", slog.String("address", cfg.Address), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed start server", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop server", slog.String("error", err.Error()))
	}

	log.Info("server stopped", slog.Int64("out_of_sync_writes", store.OutOfSync()))
}
