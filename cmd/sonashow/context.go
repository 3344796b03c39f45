package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"sonashow/internal/config"
	"sonashow/internal/logging"
	"sonashow/internal/services/sonarr"
	"sonashow/internal/services/tmdb"
	"sonashow/internal/services/tvdb"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) tmdbClient(cfg *config.Config) (*tmdb.Client, error) {
	client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, tmdb.WithTimeout(cfg.RequestTimeout()))
	if err != nil {
		return nil, fmt.Errorf("tmdb client: %w", err)
	}
	return client, nil
}

func (c *commandContext) tvdbClient(cfg *config.Config) (*tvdb.Client, error) {
	client, err := tvdb.New(cfg.TVDB.APIKey, cfg.TVDB.BaseURL, tvdb.WithTimeout(cfg.RequestTimeout()))
	if err != nil {
		return nil, fmt.Errorf("tvdb client: %w", err)
	}
	return client, nil
}

func (c *commandContext) sonarrClient(cfg *config.Config) (*sonarr.Client, error) {
	client, err := sonarr.New(cfg.Sonarr.Address, cfg.Sonarr.APIKey, cfg.RequestTimeout())
	if err != nil {
		return nil, fmt.Errorf("sonarr client: %w", err)
	}
	return client, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
