package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loan-simulator/config"
	httpLayer "loan-simulator/http"
	"loan-simulator/logger"
	"loan-simulator/repository"
	"loan-simulator/scheduler"
	"loan-simulator/service"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		os.Stderr.WriteString("load .env: " + err.Error() + "\n")
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, cfg.ServiceName); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Error("config validation: %v", err)
		os.Exit(1)
	}

	banks, err := cfg.BankTable()
	if err != nil {
		logger.Error("bank table: %v", err)
		os.Exit(1)
	}
	engine, err := service.NewEngine(banks, cfg.Subsidy())
	if err != nil {
		logger.Error("init engine: %v", err)
		os.Exit(1)
	}
	logger.Info("engine ready with %d banks, subsidy %.2f", banks.Len(), engine.Subsidy())

	// History: SQLite when configured, memory otherwise
	var history repository.HistoryRepository
	if cfg.Database.SQLitePath != "" {
		hs, err := repository.NewHistorySQLite(cfg.Database.SQLitePath)
		if err != nil {
			logger.Warn("init sqlite history failed, using memory: %v", err)
			history = repository.NewHistoryMemory()
		} else {
			history = hs
		}
	} else {
		history = repository.NewHistoryMemory()
	}
	defer history.Close()

	advisor := service.NewAdvisor(cfg.Advisor.APIKey, cfg.Advisor.APIURL, cfg.Advisor.Model)
	if !advisor.Enabled() {
		logger.Info("advisor disabled, explanations use the built-in text")
	}

	simulationService := service.NewSimulationService(engine, history, advisor)
	simulationHandler := httpLayer.NewSimulationHandler(simulationService)

	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	var limiter httpLayer.Limiter
	if cfg.Redis.Addr != "" {
		counter := repository.NewRedisCounter(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer counter.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := counter.Ping(pingCtx); err != nil {
			logger.Warn("redis %s unreachable, rate limiting fails open until it recovers: %v", cfg.Redis.Addr, err)
		}
		cancel()

		limiter = httpLayer.NewWindowLimiter(counter, cfg.RateLimit.Capacity, window)
	} else {
		rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimit.Capacity, window)
		defer rateLimiter.Stop()
		limiter = rateLimiter
	}

	sched := scheduler.NewScheduler(history, time.Duration(cfg.History.RetentionDays)*24*time.Hour)
	if err := sched.Register(cfg.History.RetentionCron); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      httpLayer.NewRouter(simulationHandler, limiter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("API listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("error starting server: %v", err)
		return
	case <-quit:
		logger.Info("shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("error during server shutdown: %v", err)
	}

	logger.Info("server exited")
}
