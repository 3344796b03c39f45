package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"sonashow/internal/acquisition"
	"sonashow/internal/catalog"
	"sonashow/internal/config"
	"sonashow/internal/discovery"
	"sonashow/internal/logging"
	"sonashow/internal/notifications"
	"sonashow/internal/services"
)

// Inbound websocket event names.
const (
	EventSidebarOpened  = "side_bar_opened"
	EventGetSonarrShows = "get_sonarr_shows"
	EventAdder          = "adder"
	EventLoadSettings   = "load_settings"
	EventUpdateSettings = "update_settings"
	EventStartRequest   = "start_req"
	EventStopRequest    = "stop_req"
	EventLoadMoreShows  = "load_more_shows"
)

// connectSnapshotLimit bounds the candidates replayed to the first client.
const connectSnapshotLimit = 15

var (
	// ErrUnknownEvent is returned by Dispatch for unrecognized event names.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrAcquisitionInFlight rejects a second add of a series already being added.
	ErrAcquisitionInFlight = errors.New("acquisition already in progress")
)

// Acquirer adds a candidate to Sonarr.
type Acquirer interface {
	Acquire(ctx context.Context, name, year string) acquisition.Outcome
}

// Options wires a Controller.
type Options struct {
	Config     *config.Config
	ConfigPath string
	Index      *catalog.Index
	Library    catalog.Lister
	Session    *discovery.Session
	Acquirer   Acquirer
	Sink       notifications.Sink
	// OnSettingsChanged rebuilds collaborators after a settings update.
	OnSettingsChanged func(cfg config.Config) error
	// BaseContext scopes background work. Defaults to context.Background.
	BaseContext context.Context
	Logger      *slog.Logger
}

// Controller implements the client-facing operations.
type Controller struct {
	index     *catalog.Index
	library   catalog.Lister
	session   *discovery.Session
	acquirer  Acquirer
	sink      notifications.Sink
	onChanged func(cfg config.Config) error
	base      context.Context
	logger    *slog.Logger

	cfgMu      sync.Mutex
	cfg        *config.Config
	configPath string

	inflight *xsync.MapOf[string, struct{}]
	wg       sync.WaitGroup
}

// NewController constructs a Controller.
func NewController(opts Options) (*Controller, error) {
	if opts.Config == nil || opts.Index == nil || opts.Session == nil {
		return nil, errors.New("controller requires config, index, and session")
	}
	sink := opts.Sink
	if sink == nil {
		sink = notifications.Nop{}
	}
	base := opts.BaseContext
	if base == nil {
		base = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Controller{
		index:      opts.Index,
		library:    opts.Library,
		session:    opts.Session,
		acquirer:   opts.Acquirer,
		sink:       sink,
		onChanged:  opts.OnSettingsChanged,
		base:       base,
		logger:     logging.NewComponentLogger(logger, "web"),
		cfg:        opts.Config,
		configPath: opts.ConfigPath,
		inflight:   xsync.NewMapOf[string, struct{}](),
	}, nil
}

// background runs fn on its own goroutine scoped to the base context.
func (c *Controller) background(name string, fn func(ctx context.Context)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.ErrorWithContext(c.logger, "background task panicked", "task_panic",
					logging.String("task", name),
					logging.Any("panic", r),
					logging.String(logging.FieldImpact, "task abandoned"))
			}
		}()
		fn(c.base)
	}()
}

// Wait blocks until every background task started so far has returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// ConnectSnapshot returns the candidates replayed to a newly connected
// client. The first client receives a bounded random sample.
func (c *Controller) ConnectSnapshot(firstClient bool) []discovery.Candidate {
	if firstClient {
		return c.session.Snapshot(connectSnapshotLimit)
	}
	return c.session.Candidates()
}

// SidebarOpened republishes the cached library listing, if any.
func (c *Controller) SidebarOpened() {
	if c.index.Len() == 0 {
		return
	}
	c.sink.Publish(notifications.EventSidebarUpdate, notifications.SidebarUpdate{
		Status:  "Success",
		Data:    c.index.Items(),
		Running: c.session.Running(),
	})
}

// RefreshLibrary reloads the owned library from Sonarr and publishes the
// result as a sidebar update.
func (c *Controller) RefreshLibrary(ctx context.Context) ([]catalog.Item, error) {
	c.logger.Info("getting shows from Sonarr")
	if c.library == nil {
		err := services.Wrap(services.ErrConfiguration, "sonarr", "list series", "client unavailable", nil)
		c.publishLibraryError(err)
		return nil, err
	}
	items, err := c.index.Refresh(ctx, c.library)
	if err != nil {
		logging.ErrorWithContext(c.logger, "library refresh failed", "library_refresh_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the Sonarr address and API key"),
			logging.String(logging.FieldImpact, "library listing unavailable"))
		c.publishLibraryError(err)
		return nil, err
	}
	c.logger.Info("library refreshed", logging.Int("series", len(items)))
	c.sink.Publish(notifications.EventSidebarUpdate, notifications.SidebarUpdate{
		Status:  "Success",
		Data:    items,
		Running: c.session.Running(),
	})
	return items, nil
}

func (c *Controller) publishLibraryError(err error) {
	code := 500
	data := err.Error()
	var statusErr *services.StatusError
	if errors.As(err, &statusErr) {
		code = statusErr.StatusCode
		data = string(statusErr.Body)
	}
	c.sink.Publish(notifications.EventSidebarUpdate, notifications.SidebarUpdate{
		Status:  "Error",
		Code:    code,
		Data:    data,
		Running: c.session.Running(),
	})
}

// Start selects seeds from the library and kicks off the first round.
func (c *Controller) Start(names []string) error {
	selected := c.index.Select(names)
	if err := c.session.Start(selected); err != nil {
		c.sink.Publish(notifications.EventSidebarUpdate, notifications.SidebarUpdate{
			Status:  "Error",
			Code:    err.Error(),
			Data:    c.index.Items(),
			Running: c.session.Running(),
		})
		return err
	}
	c.LoadMore()
	return nil
}

// Stop cancels the discovery session.
func (c *Controller) Stop() {
	c.session.Stop()
}

// LoadMore runs another discovery round in the background.
func (c *Controller) LoadMore() {
	c.background("discovery_round", func(ctx context.Context) {
		if _, err := c.session.RunRound(ctx); err != nil {
			logging.WarnWithContext(c.logger, "discovery round failed", "discovery_round_failed",
				logging.Error(err))
		}
	})
}

// Acquire adds name to Sonarr in the background. A series already being
// added is rejected with ErrAcquisitionInFlight.
func (c *Controller) Acquire(rawName, year string) error {
	if c.acquirer == nil {
		return errors.New("acquisition unavailable")
	}
	name := acquisition.DecodeName(rawName)
	if strings.TrimSpace(name) == "" {
		return errors.New("series name is required")
	}
	if _, loaded := c.inflight.LoadOrStore(name, struct{}{}); loaded {
		return fmt.Errorf("%w: %s", ErrAcquisitionInFlight, name)
	}
	c.background("acquire", func(ctx context.Context) {
		defer c.inflight.Delete(name)
		c.acquirer.Acquire(ctx, name, year)
	})
	return nil
}

// Settings returns the editable settings.
func (c *Controller) Settings() Settings {
	c.cfgMu.Lock()
	defer c.cfgMu.Unlock()
	return settingsFrom(c.cfg)
}

// LoadSettings publishes the editable settings to clients.
func (c *Controller) LoadSettings() {
	c.sink.Publish(notifications.EventSettingsLoaded, c.Settings())
}

// UpdateSettings applies update, saves the configuration file, and rebuilds
// collaborators when anything changed.
func (c *Controller) UpdateSettings(update SettingsUpdate) (Settings, error) {
	c.cfgMu.Lock()
	changed := update.apply(c.cfg)
	snapshot := *c.cfg
	current := settingsFrom(c.cfg)
	path := c.configPath
	c.cfgMu.Unlock()

	if path != "" {
		if err := snapshot.Save(path); err != nil {
			logging.ErrorWithContext(c.logger, "saving config failed", "config_save_failed",
				logging.Error(err),
				logging.String("path", path),
				logging.String(logging.FieldImpact, "settings apply until restart only"))
			return current, err
		}
	}
	if changed && c.onChanged != nil {
		if err := c.onChanged(snapshot); err != nil {
			return current, fmt.Errorf("apply settings: %w", err)
		}
	}
	c.logger.Info("settings updated", logging.Bool("changed", changed))
	return current, nil
}

// Dispatch routes an inbound websocket event.
func (c *Controller) Dispatch(event string, data json.RawMessage) error {
	switch event {
	case EventSidebarOpened:
		c.SidebarOpened()
	case EventGetSonarrShows:
		c.background("library_refresh", func(ctx context.Context) {
			_, _ = c.RefreshLibrary(ctx)
		})
	case EventAdder:
		name, year, err := parseAddRequest(data)
		if err != nil {
			return err
		}
		return c.Acquire(name, year)
	case EventLoadSettings:
		c.LoadSettings()
	case EventUpdateSettings:
		var update SettingsUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			return fmt.Errorf("decode settings: %w", err)
		}
		_, err := c.UpdateSettings(update)
		return err
	case EventStartRequest:
		var names []string
		if len(data) > 0 {
			if err := json.Unmarshal(data, &names); err != nil {
				return fmt.Errorf("decode selection: %w", err)
			}
		}
		return c.Start(names)
	case EventStopRequest:
		c.Stop()
	case EventLoadMoreShows:
		c.LoadMore()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	return nil
}

// parseAddRequest decodes the [name, year] pair sent by clients. The year
// may arrive as a string or a number.
func parseAddRequest(data json.RawMessage) (string, string, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil || len(pair) != 2 {
		return "", "", errors.New("add request must be [name, year]")
	}
	var name string
	if err := json.Unmarshal(pair[0], &name); err != nil {
		return "", "", fmt.Errorf("decode name: %w", err)
	}
	var year any
	if err := json.Unmarshal(pair[1], &year); err != nil {
		return "", "", fmt.Errorf("decode year: %w", err)
	}
	switch v := year.(type) {
	case string:
		return name, v, nil
	case float64:
		return name, fmt.Sprintf("%.0f", v), nil
	case nil:
		return name, "", nil
	default:
		return "", "", fmt.Errorf("unsupported year %v", v)
	}
}
