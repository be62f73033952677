package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	alertemail "github.com/akarpov/telescout/internal/adapters/alert/email"
	alertslack "github.com/akarpov/telescout/internal/adapters/alert/slack"
	"github.com/akarpov/telescout/internal/adapters/collector/docker"
	"github.com/akarpov/telescout/internal/adapters/collector/host"
	"github.com/akarpov/telescout/internal/adapters/collector/rabbitmq"
	runtimecol "github.com/akarpov/telescout/internal/adapters/collector/runtime"
	mongorepo "github.com/akarpov/telescout/internal/adapters/repository/mongo"
	pgrepo "github.com/akarpov/telescout/internal/adapters/repository/postgres"
	"github.com/akarpov/telescout/internal/agent"
	"github.com/akarpov/telescout/internal/config"
	"github.com/akarpov/telescout/internal/domain"
	"github.com/akarpov/telescout/internal/ports"
)

// build assembles the storage backend and every configured collaborator.
// A failed backend connect is logged and the process keeps running in a
// degraded state where writes fail; only configuration errors abort.
func build(ctx context.Context, cfg config.AgentConfig, logger *zap.Logger) (*agent.Agent, func(), error) {
	store, err := connectStorage(ctx, cfg, logger)
	if err != nil {
		if store == nil || !errors.Is(err, domain.ErrConnection) {
			return nil, nil, err
		}
		logger.Warn("storage connect failed, continuing degraded", zap.Error(err))
	} else {
		logger.Info("storage connected", zap.String("backend", cfg.Backend))
	}

	opts := []agent.Option{
		agent.WithHostSampler(host.New()),
		agent.WithHostSampler(runtimecol.New()),
	}

	if cfg.ContainerEnabled {
		runtime, err := docker.NewRuntime()
		if err != nil {
			logger.Warn("docker unavailable, container polling disabled", zap.Error(err))
		} else {
			opts = append(opts, agent.WithContainerRuntime(runtime))
		}
	}

	if cfg.BrokerURL != "" {
		broker, err := rabbitmq.New(cfg.BrokerURL, cfg.BrokerUser, cfg.BrokerPass)
		if err != nil {
			logger.Warn("broker client unavailable, queue polling disabled", zap.Error(err))
		} else {
			opts = append(opts, agent.WithBroker(broker))
		}
	}

	if channels := buildChannels(cfg); len(channels) > 0 {
		opts = append(opts, agent.WithAlertChannels(channels...))
	}

	a := agent.New(cfg, store, logger, opts...)
	cleanup := func() { a.Stop(context.Background()) }
	return a, cleanup, nil
}

func connectStorage(ctx context.Context, cfg config.AgentConfig, logger *zap.Logger) (ports.Storage, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		return pgrepo.Connect(ctx, cfg.DSN, logger)
	default:
		return mongorepo.Connect(ctx, cfg.MongoURI, cfg.MongoDB, logger)
	}
}

func buildChannels(cfg config.AgentConfig) []ports.AlertChannel {
	var channels []ports.AlertChannel
	if cfg.SlackWebhookURL != "" {
		channels = append(channels, alertslack.New(cfg.SlackWebhookURL))
	}
	if cfg.SMTPHost != "" && len(cfg.AlertTo) > 0 {
		channels = append(channels, alertemail.New(alertemail.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.AlertFrom,
			To:       cfg.AlertTo,
		}))
	}
	return channels
}
