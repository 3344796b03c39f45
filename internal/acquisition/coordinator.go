package acquisition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"sync"

	"sonashow/internal/catalog"
	"sonashow/internal/config"
	"sonashow/internal/discovery"
	"sonashow/internal/identity"
	"sonashow/internal/logging"
	"sonashow/internal/notifications"
	"sonashow/internal/services/sonarr"
	"sonashow/internal/textutil"
)

// Toast text for a candidate with no directory match.
const NoMatchTitle = "Failed to add Show"

// Catalog is the Sonarr add endpoint.
type Catalog interface {
	AddSeries(ctx context.Context, payload sonarr.AddRequest) (sonarr.AddResult, error)
}

// Candidates is the view of the discovery session acquisitions update.
type Candidates interface {
	Candidate(name string) (discovery.Candidate, bool)
	SetStatus(name string, status discovery.Status) (discovery.Candidate, bool)
}

// Settings are the add-request parameters read from configuration.
type Settings struct {
	RootFolderPath           string
	QualityProfileID         int
	MetadataProfileID        int
	SearchForMissingEpisodes bool
	DryRun                   bool
}

// SettingsFromConfig extracts add-request settings.
func SettingsFromConfig(cfg config.Sonarr) Settings {
	return Settings{
		RootFolderPath:           cfg.RootFolderPath,
		QualityProfileID:         cfg.QualityProfileID,
		MetadataProfileID:        cfg.MetadataProfileID,
		SearchForMissingEpisodes: cfg.SearchForMissingEpisodes,
		DryRun:                   cfg.DryRun,
	}
}

// Outcome reports what happened to one acquisition.
type Outcome struct {
	Name      string
	Year      string
	Status    discovery.Status
	Match     identity.Match
	Rejection string
	Err       error
}

// Coordinator performs acquisitions.
type Coordinator struct {
	resolver   identity.Resolving
	catalog    Catalog
	index      *catalog.Index
	candidates Candidates
	sink       notifications.Sink
	notifier   notifications.Service
	logger     *slog.Logger

	mu       sync.RWMutex
	settings Settings
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithCandidates sets the session whose candidate statuses are updated.
func WithCandidates(c Candidates) Option {
	return func(co *Coordinator) { co.candidates = c }
}

// WithSink sets the push channel.
func WithSink(sink notifications.Sink) Option {
	return func(co *Coordinator) {
		if sink != nil {
			co.sink = sink
		}
	}
}

// WithNotifier sets the ntfy service informed of library additions.
func WithNotifier(n notifications.Service) Option {
	return func(co *Coordinator) { co.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(co *Coordinator) {
		if logger != nil {
			co.logger = logger
		}
	}
}

// New constructs a Coordinator.
func New(resolver identity.Resolving, client Catalog, index *catalog.Index, settings Settings, opts ...Option) *Coordinator {
	co := &Coordinator{
		resolver: resolver,
		catalog:  client,
		index:    index,
		sink:     notifications.Nop{},
		settings: settings,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(co)
	}
	co.logger = logging.NewComponentLogger(co.logger, "acquisition")
	return co
}

// UpdateSettings replaces the add-request settings used by later calls.
func (c *Coordinator) UpdateSettings(settings Settings) {
	c.mu.Lock()
	c.settings = settings
	c.mu.Unlock()
}

func (c *Coordinator) currentSettings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// DecodeName reverses the URL escaping the web client applies to names.
func DecodeName(raw string) string {
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// Acquire resolves and adds name, then records the outcome on its candidate.
func (c *Coordinator) Acquire(ctx context.Context, name, year string) Outcome {
	out := c.acquire(ctx, name, year)
	c.report(ctx, out)
	return out
}

func (c *Coordinator) acquire(ctx context.Context, name, year string) Outcome {
	out := Outcome{Name: name, Year: year, Status: discovery.StatusFailed}
	logger := c.logger.With(logging.Show(name))

	match, err := c.resolver.Resolve(ctx, name, year)
	if err != nil {
		out.Err = err
		if errors.Is(err, identity.ErrNotFound) {
			message := fmt.Sprintf("No Matching Show for: '%s' in The Movie Database.", name)
			logger.Info("no matching series", logging.Year(year))
			c.sink.Publish(notifications.EventToast, notifications.Toast{Title: NoMatchTitle, Message: message})
			return out
		}
		logging.ErrorWithContext(logger, "series identification failed", "identity_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the TVDB API key and connectivity"),
			logging.String(logging.FieldImpact, "series not added"))
		return out
	}
	out.Match = match

	settings := c.currentSettings()
	payload := buildPayload(settings, name, match.ExternalID)
	var result sonarr.AddResult
	if settings.DryRun {
		logger.Info("dry run, skipping Sonarr add", logging.TVDBID(match.ExternalID))
		result = sonarr.AddResult{Created: true, StatusCode: 201}
	} else {
		result, err = c.catalog.AddSeries(ctx, payload)
		if err != nil {
			out.Err = err
			logging.ErrorWithContext(logger, "sonarr add request failed", "sonarr_add_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the Sonarr address and API key"),
				logging.String(logging.FieldImpact, "series not added"))
			return out
		}
	}

	out.Status, out.Rejection = classify(result)
	folder := textutil.FolderName(name)
	switch out.Status {
	case discovery.StatusAdded:
		logger.Info("series added to Sonarr", logging.TVDBID(match.ExternalID))
		if c.index != nil {
			c.index.Add(name)
		}
	case discovery.StatusAlreadyOwned:
		logger.Info("series already in Sonarr", logging.String("folder", folder), logging.String("reason", out.Rejection))
	case discovery.StatusInvalidPath:
		logger.Info("root folder path not valid",
			logging.String("path", path.Join(settings.RootFolderPath, folder)+"/"))
	case discovery.StatusInvalidIdentifier:
		logger.Info("series id not correct", logging.TVDBID(match.ExternalID), logging.String("folder", folder))
		if f, ok := c.resolver.(identity.Forgetter); ok {
			f.Forget(ctx, name, year)
		}
	default:
		logging.WarnWithContext(logger, "sonarr rejected series", "sonarr_add_rejected",
			logging.Int("status_code", result.StatusCode),
			logging.String("reason", out.Rejection),
			logging.String(logging.FieldImpact, "series not added"))
	}
	return out
}

func buildPayload(settings Settings, name string, tvdbID int64) sonarr.AddRequest {
	return sonarr.AddRequest{
		Title:             name,
		QualityProfileID:  settings.QualityProfileID,
		MetadataProfileID: settings.MetadataProfileID,
		TitleSlug:         textutil.Slug(name),
		RootFolderPath:    settings.RootFolderPath,
		TVDBID:            tvdbID,
		SeasonFolder:      true,
		Monitored:         true,
		AddOptions: sonarr.AddOptions{
			Monitor:                  "all",
			SearchForMissingEpisodes: settings.SearchForMissingEpisodes,
		},
	}
}

// classify maps a Sonarr answer to a candidate status.
func classify(result sonarr.AddResult) (discovery.Status, string) {
	if result.Created {
		return discovery.StatusAdded, ""
	}
	msg := result.RejectionMessage
	switch {
	case strings.Contains(msg, "already exists in the database"),
		strings.Contains(msg, "configured for an existing show"):
		return discovery.StatusAlreadyOwned, msg
	case strings.Contains(msg, "Invalid Path"):
		return discovery.StatusInvalidPath, msg
	case strings.Contains(msg, "series with this ID was not found"):
		return discovery.StatusInvalidIdentifier, msg
	default:
		return discovery.StatusFailed, msg
	}
}

func (c *Coordinator) report(ctx context.Context, out Outcome) {
	var seed string
	if c.candidates != nil {
		if updated, ok := c.candidates.SetStatus(out.Name, out.Status); ok {
			seed = updated.SourceSeed
			c.sink.Publish(notifications.EventRefreshShow, updated)
		}
	}
	if out.Status != discovery.StatusAdded || c.notifier == nil {
		return
	}
	payload := notifications.Payload{"title": out.Name, "year": out.Year, "seed": seed}
	if err := c.notifier.Publish(ctx, notifications.EventShowAdded, payload); err != nil {
		logging.WarnWithContext(c.logger, "ntfy notification failed", "ntfy_failed",
			logging.Show(out.Name),
			logging.Error(err),
			logging.String(logging.FieldImpact, "library update not pushed"))
	}
}
