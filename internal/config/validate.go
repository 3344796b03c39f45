package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. API keys are not required
// here; they can be supplied later through the settings route.
func (c *Config) Validate() error {
	if err := c.validateSonarr(); err != nil {
		return err
	}
	if err := c.validateDiscovery(); err != nil {
		return err
	}
	if c.Network.RequestTimeout <= 0 {
		return errors.New("network.request_timeout must be positive (seconds)")
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateSonarr() error {
	if c.Sonarr.Address == "" {
		return errors.New("sonarr.address must be set")
	}
	if c.Sonarr.QualityProfileID <= 0 {
		return errors.New("sonarr.quality_profile_id must be positive")
	}
	if c.Sonarr.MetadataProfileID <= 0 {
		return errors.New("sonarr.metadata_profile_id must be positive")
	}
	return nil
}

func (c *Config) validateDiscovery() error {
	d := c.Discovery
	if d.MinimumRating < 0 || d.MinimumRating > 10 {
		return errors.New("discovery.minimum_rating must be between 0 and 10")
	}
	if d.MinimumVotes < 0 {
		return errors.New("discovery.minimum_votes must be >= 0")
	}
	switch d.MatchPolicy {
	case MatchPolicyLiteral, MatchPolicyYearRequired:
	default:
		return fmt.Errorf("discovery.match_policy must be %q or %q, got %q", MatchPolicyLiteral, MatchPolicyYearRequired, d.MatchPolicy)
	}
	return nil
}
