package web

import "sonashow/internal/config"

// Settings are the connection values editable from the web client.
type Settings struct {
	SonarrAddress  string `json:"sonarr_address"`
	SonarrAPIKey   string `json:"sonarr_api_key"`
	RootFolderPath string `json:"root_folder_path"`
	TVDBAPIKey     string `json:"tvdb_api_key"`
	TMDBAPIKey     string `json:"tmdb_api_key"`
}

// SettingsUpdate carries the fields a client chose to change.
type SettingsUpdate struct {
	SonarrAddress  *string `json:"sonarr_address"`
	SonarrAPIKey   *string `json:"sonarr_api_key"`
	RootFolderPath *string `json:"root_folder_path"`
	TVDBAPIKey     *string `json:"tvdb_api_key"`
	TMDBAPIKey     *string `json:"tmdb_api_key"`
}

func settingsFrom(cfg *config.Config) Settings {
	return Settings{
		SonarrAddress:  cfg.Sonarr.Address,
		SonarrAPIKey:   cfg.Sonarr.APIKey,
		RootFolderPath: cfg.Sonarr.RootFolderPath,
		TVDBAPIKey:     cfg.TVDB.APIKey,
		TMDBAPIKey:     cfg.TMDB.APIKey,
	}
}

// apply writes the provided fields into cfg and reports whether any changed.
func (u SettingsUpdate) apply(cfg *config.Config) bool {
	changed := false
	set := func(dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}
	set(&cfg.Sonarr.Address, u.SonarrAddress)
	set(&cfg.Sonarr.APIKey, u.SonarrAPIKey)
	set(&cfg.Sonarr.RootFolderPath, u.RootFolderPath)
	set(&cfg.TVDB.APIKey, u.TVDBAPIKey)
	set(&cfg.TMDB.APIKey, u.TMDBAPIKey)
	return changed
}
