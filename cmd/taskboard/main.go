package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/api"
	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/notify"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Init(logger.Config{})
		logger.Fatal("config", "error", err)
	}
	logger.Init(logger.Config{Debug: cfg.Debug, File: cfg.LogFile})

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	authSvc := service.NewAuthService(userRepo, sessionRepo, tokens)
	categorySvc := service.NewCategoryService(categoryRepo)
	taskSvc := service.NewTaskService(taskRepo, categoryRepo)
	subtaskSvc := service.NewSubtaskService(subtaskRepo, taskRepo)
	statsSvc := service.NewStatsService(statsRepo)
	reminderSvc := service.NewReminderService(taskRepo, userRepo)

	scheduler := service.NewSchedulerService(time.Local)

	if _, err := scheduler.ScheduleInterval(time.Hour, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if n, err := authSvc.SweepSessions(jobCtx); err != nil {
			logger.Error("session sweep", "error", err)
		} else if n > 0 {
			logger.Info("session sweep", "removed", n)
		}
	}); err != nil {
		logger.Fatal("schedule session sweep", "error", err)
	}

	if cfg.TelegramToken != "" {
		notifier, err := notify.NewTelegramNotifier(cfg.TelegramToken)
		if err != nil {
			logger.Fatal("telegram notifier", "error", err)
		}
		if _, err := scheduler.ScheduleEveryMinute(func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := reminderSvc.Dispatch(jobCtx, time.Now(), notifier); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("reminder dispatch", "error", err)
			}
		}); err != nil {
			logger.Fatal("schedule reminders", "error", err)
		}
	}

	scheduler.Start()
	defer scheduler.Stop()

	server := api.NewServer(cfg, authSvc, categorySvc, taskSvc, subtaskSvc, statsSvc)
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("taskboard listening", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("shutdown complete")
}
