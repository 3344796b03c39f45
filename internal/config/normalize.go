package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSonarr()
	c.normalizeServices()
	c.normalizeDiscovery()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	return nil
}

func (c *Config) normalizeSonarr() {
	c.Sonarr.Address = strings.TrimRight(strings.TrimSpace(c.Sonarr.Address), "/")
	c.Sonarr.APIKey = strings.TrimSpace(c.Sonarr.APIKey)
	c.Sonarr.RootFolderPath = strings.TrimSpace(c.Sonarr.RootFolderPath)
	if c.Network.RequestTimeout <= 0 {
		c.Network.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeServices() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TVDB.APIKey = strings.TrimSpace(c.TVDB.APIKey)
	c.TVDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TVDB.BaseURL), "/")
	if c.TVDB.BaseURL == "" {
		c.TVDB.BaseURL = defaultTVDBBaseURL
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeDiscovery() {
	c.Discovery.LanguageChoice = strings.ToLower(strings.TrimSpace(c.Discovery.LanguageChoice))
	if c.Discovery.LanguageChoice == "" {
		c.Discovery.LanguageChoice = defaultLanguageChoice
	}
	c.Discovery.MatchPolicy = strings.ToLower(strings.TrimSpace(c.Discovery.MatchPolicy))
	if c.Discovery.MatchPolicy == "" {
		c.Discovery.MatchPolicy = defaultMatchPolicy
	}
	if c.Discovery.SampleSize <= 0 {
		c.Discovery.SampleSize = defaultSampleSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
