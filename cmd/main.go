package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/lsdops/slashreport/internal/config"
	"github.com/lsdops/slashreport/internal/infrastructure/gitlab"
	"github.com/lsdops/slashreport/internal/transport"
	"github.com/lsdops/slashreport/internal/transport/handler"
	"github.com/lsdops/slashreport/internal/usecase/service"
	"github.com/lsdops/slashreport/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Слои
	gitlabClient := gitlab.NewClient(cfg.GitLab.BaseURL, log)
	verifier := service.NewSignatureVerifier(cfg.Slack.SigningSecret, cfg.Slack.AllowedChannelIDs, log)
	resolver := service.NewGroupResolver(log)
	aggregator := service.NewAggregator(resolver, log)
	responder := service.NewResponder(
		resolver,
		aggregator,
		func(token string) service.GitLabAPI { return gitlabClient.WithToken(token) },
		cfg.GitLab.PersonalToken,
		cfg.GitLab.SecretAccessKey,
		log,
	)

	slashHandler := handler.NewSlashHandler(verifier, responder, log)
	healthHandler := handler.NewHealthHandler(log)

	router := transport.NewRouter(slashHandler, healthHandler, log)
	server := transport.NewServer(cfg.App.Port, router, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
}
