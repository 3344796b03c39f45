package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type envBinding struct {
	name  string
	apply func(c *Config, value string) error
}

// envBindings lists the recognised environment variables. Each name is also
// accepted upper-cased with a SONASHOW_ prefix (e.g. SONASHOW_TMDB_API_KEY).
var envBindings = []envBinding{
	{"sonarr_address", func(c *Config, v string) error { c.Sonarr.Address = v; return nil }},
	{"sonarr_api_key", func(c *Config, v string) error { c.Sonarr.APIKey = v; return nil }},
	{"root_folder_path", func(c *Config, v string) error { c.Sonarr.RootFolderPath = v; return nil }},
	{"tvdb_api_key", func(c *Config, v string) error { c.TVDB.APIKey = v; return nil }},
	{"tmdb_api_key", func(c *Config, v string) error { c.TMDB.APIKey = v; return nil }},
	{"fallback_to_top_result", func(c *Config, v string) error {
		c.Discovery.FallbackToTopResult = parseEnvBool(v)
		return nil
	}},
	{"sonarr_api_timeout", func(c *Config, v string) error {
		return parseEnvFloat(v, &c.Network.RequestTimeout)
	}},
	{"quality_profile_id", func(c *Config, v string) error {
		return parseEnvInt(v, &c.Sonarr.QualityProfileID)
	}},
	{"metadata_profile_id", func(c *Config, v string) error {
		return parseEnvInt(v, &c.Sonarr.MetadataProfileID)
	}},
	{"search_for_missing_episodes", func(c *Config, v string) error {
		c.Sonarr.SearchForMissingEpisodes = parseEnvBool(v)
		return nil
	}},
	{"dry_run_adding_to_sonarr", func(c *Config, v string) error {
		c.Sonarr.DryRun = parseEnvBool(v)
		return nil
	}},
	{"minimum_rating", func(c *Config, v string) error {
		return parseEnvFloat(v, &c.Discovery.MinimumRating)
	}},
	{"minimum_votes", func(c *Config, v string) error {
		return parseEnvInt(v, &c.Discovery.MinimumVotes)
	}},
	{"language_choice", func(c *Config, v string) error { c.Discovery.LanguageChoice = v; return nil }},
	{"ntfy_topic", func(c *Config, v string) error { c.Notifications.NtfyTopic = v; return nil }},
}

// applyEnvironment overlays environment variables on top of file values.
func (c *Config) applyEnvironment() error {
	for _, binding := range envBindings {
		value, ok := lookupEnv(binding.name)
		if !ok {
			continue
		}
		if err := binding.apply(c, value); err != nil {
			return fmt.Errorf("environment %s: %w", binding.name, err)
		}
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	for _, key := range []string{name, "SONASHOW_" + strings.ToUpper(name)} {
		if value, ok := os.LookupEnv(key); ok {
			value = strings.TrimSpace(value)
			if value != "" {
				return value, true
			}
		}
	}
	return "", false
}

func parseEnvBool(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}

func parseEnvInt(value string, dst *int) error {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid integer %q", value)
	}
	*dst = parsed
	return nil
}

func parseEnvFloat(value string, dst *float64) error {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", value)
	}
	*dst = parsed
	return nil
}
