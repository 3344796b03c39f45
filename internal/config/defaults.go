package config

const (
	defaultSonarrAddress     = "http://192.168.1.2:8989"
	defaultRootFolderPath    = "/data/media/shows/"
	defaultQualityProfileID  = 1
	defaultMetadataProfileID = 1
	defaultTMDBBaseURL       = "https://api.themoviedb.org/3"
	defaultTVDBBaseURL       = "https://api4.thetvdb.com/v4"
	defaultMinimumRating     = 5.5
	defaultMinimumVotes      = 50
	defaultLanguageChoice    = LanguageChoiceAll
	defaultMatchPolicy       = MatchPolicyLiteral
	defaultSampleSize        = 5
	defaultRequestTimeout    = 120.0
	defaultServerBind        = "0.0.0.0:5000"
	defaultDataDir           = "~/.local/share/sonashow"
	defaultNotifyTimeout     = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Match policies understood by the identity resolver.
const (
	MatchPolicyLiteral      = "literal"
	MatchPolicyYearRequired = "year_required"
)

// LanguageChoiceAll disables the original-language filter.
const LanguageChoiceAll = "all"

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Sonarr: Sonarr{
			Address:           defaultSonarrAddress,
			RootFolderPath:    defaultRootFolderPath,
			QualityProfileID:  defaultQualityProfileID,
			MetadataProfileID: defaultMetadataProfileID,
		},
		TMDB: TMDB{BaseURL: defaultTMDBBaseURL},
		TVDB: TVDB{BaseURL: defaultTVDBBaseURL},
		Discovery: Discovery{
			MinimumRating:  defaultMinimumRating,
			MinimumVotes:   defaultMinimumVotes,
			LanguageChoice: defaultLanguageChoice,
			MatchPolicy:    defaultMatchPolicy,
			SampleSize:     defaultSampleSize,
		},
		Network: Network{RequestTimeout: defaultRequestTimeout},
		Server:  Server{Bind: defaultServerBind},
		Paths:   Paths{DataDir: defaultDataDir},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
