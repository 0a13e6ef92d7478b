package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"cutroom/internal/api"
	"cutroom/internal/config"
	"cutroom/internal/logging"
	"cutroom/internal/metrics"
	"cutroom/internal/registry"
	"cutroom/internal/workspace"
)

// errResultFailed signals a command whose Result was already printed.
var errResultFailed = errors.New("operation failed")

type commandContext struct {
	configFlag string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	serviceOnce sync.Once
	service     *api.ProjectService
	registry    *registry.Store
	serviceErr  error

	logger  *slog.Logger
	metrics *prometheus.Registry
}

func newCommandContext() *commandContext {
	return &commandContext{metrics: prometheus.NewRegistry()}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	c.logger = logger
	return logger, nil
}

// projectService opens the registry and wires the workspace manager on
// first use.
func (c *commandContext) projectService() (*api.ProjectService, error) {
	c.serviceOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.serviceErr = err
			return
		}
		logger, err := c.ensureLogger()
		if err != nil {
			c.serviceErr = err
			return
		}
		observer, err := metrics.NewPrometheusObserver("", c.metrics)
		if err != nil {
			c.serviceErr = err
			return
		}
		store, err := registry.Open(cfg.RegistryPath())
		if err != nil {
			c.serviceErr = fmt.Errorf("open registry: %w", err)
			return
		}
		manager, err := workspace.NewManager(cfg, store,
			workspace.WithLogger(logger),
			workspace.WithObserver(observer),
		)
		if err != nil {
			_ = store.Close()
			c.serviceErr = err
			return
		}
		c.registry = store
		c.service = api.NewProjectService(manager)
	})
	return c.service, c.serviceErr
}

// close releases the registry and flushes metrics to the configured textfile.
func (c *commandContext) close() {
	if c.registry != nil {
		if err := c.registry.Close(); err != nil && c.logger != nil {
			c.logger.Warn("close registry failed", logging.Error(err))
		}
		c.registry = nil
	}
	if c.config == nil || c.config.Metrics.TextfilePath == "" {
		return
	}
	if err := metrics.WriteTextfile(c.config.Metrics.TextfilePath, c.metrics); err != nil && c.logger != nil {
		logging.WarnWithContext(c.logger, "metrics textfile not written", "metrics_write_failed",
			logging.String(logging.FieldPath, c.config.Metrics.TextfilePath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "textfile collector keeps stale values"),
		)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
