package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"sonashow/internal/acquisition"
	"sonashow/internal/catalog"
	"sonashow/internal/config"
	"sonashow/internal/discovery"
	"sonashow/internal/idcache"
	"sonashow/internal/identity"
	"sonashow/internal/logging"
	"sonashow/internal/notifications"
	"sonashow/internal/web"
)

// ErrAlreadyRunning is returned by Start when another instance holds the lock.
var ErrAlreadyRunning = errors.New("another sonashow instance is already running")

// Daemon coordinates the engine and web surface and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	lockPath string
	lock     *flock.Flock

	index    *catalog.Index
	hub      *notifications.Hub
	upstream *upstream

	mu          sync.Mutex
	cache       *idcache.Cache
	session     *discovery.Session
	coordinator *acquisition.Coordinator
	controller  *web.Controller
	server      *web.Server
	cancel      context.CancelFunc

	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Address      string
	LockFilePath string
	IDCachePath  string
	LibraryCount int
	Clients      int
	Session      string
	Candidates   int
}

// New constructs a daemon. cfgPath is where settings edits are saved.
func New(cfg *config.Config, cfgPath string, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "daemon")
	return &Daemon{
		cfg:      cfg,
		cfgPath:  cfgPath,
		logger:   logger,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
		index:    catalog.New(),
		hub:      notifications.NewHub(logger),
		upstream: newUpstream(buildClients(*cfg, logger)),
	}, nil
}

// Start acquires the lock, opens the id cache, wires the engine, and starts
// serving.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.wire(runCtx); err != nil {
		cancel()
		d.release()
		return err
	}
	if err := d.server.Start(runCtx); err != nil {
		cancel()
		_ = d.cache.Close()
		d.release()
		return err
	}

	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()
	d.running.Store(true)
	d.logger.Info("sonashow daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.server.Addr()))
	return nil
}

func (d *Daemon) wire(ctx context.Context) error {
	cache, err := idcache.Open(ctx, d.cfg.IDCachePath(), d.logger)
	if err != nil {
		return fmt.Errorf("open id cache: %w", err)
	}

	resolver := identity.NewCachingResolver(
		identity.NewResolver(d.upstream, identity.Options{
			Policy:   identity.Policy(d.cfg.Discovery.MatchPolicy),
			Fallback: d.cfg.Discovery.FallbackToTopResult,
			Logger:   d.logger,
		}),
		cache, d.logger)

	session := discovery.NewSession(d.index, d.upstream, d.hub, discovery.Options{
		Filters:    discovery.FiltersFromConfig(d.cfg.Discovery),
		SampleSize: d.cfg.Discovery.SampleSize,
		Logger:     d.logger,
	})

	coordinator := acquisition.New(resolver, d.upstream, d.index,
		acquisition.SettingsFromConfig(d.cfg.Sonarr),
		acquisition.WithCandidates(session),
		acquisition.WithSink(d.hub),
		acquisition.WithNotifier(notifications.NewService(d.cfg)),
		acquisition.WithLogger(d.logger))

	controller, err := web.NewController(web.Options{
		Config:            d.cfg,
		ConfigPath:        d.cfgPath,
		Index:             d.index,
		Library:           d.upstream,
		Session:           session,
		Acquirer:          coordinator,
		Sink:              d.hub,
		OnSettingsChanged: d.applySettings,
		BaseContext:       ctx,
		Logger:            d.logger,
	})
	if err != nil {
		_ = cache.Close()
		return err
	}
	server, err := web.NewServer(d.cfg.Server.Bind, controller, d.hub, d.logger)
	if err != nil {
		_ = cache.Close()
		return err
	}

	d.mu.Lock()
	d.cache = cache
	d.session = session
	d.coordinator = coordinator
	d.controller = controller
	d.server = server
	d.mu.Unlock()
	return nil
}

// applySettings rebuilds the upstream clients after a settings edit.
func (d *Daemon) applySettings(cfg config.Config) error {
	d.upstream.swap(buildClients(cfg, d.logger))
	d.mu.Lock()
	coordinator := d.coordinator
	d.mu.Unlock()
	if coordinator != nil {
		coordinator.UpdateSettings(acquisition.SettingsFromConfig(cfg.Sonarr))
	}
	d.logger.Info("upstream clients rebuilt")
	return nil
}

// Run starts the daemon and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return d.Close()
}

// Stop cancels discovery, stops serving, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	session, controller, server := d.session, d.controller, d.server
	d.mu.Unlock()

	if session != nil {
		session.Stop()
	}
	if cancel != nil {
		cancel()
	}
	if server != nil {
		server.Stop()
	}
	if controller != nil {
		controller.Wait()
	}
	d.release()
	d.running.Store(false)
	d.logger.Info("sonashow daemon stopped")
}

// Close stops the daemon and releases the id cache.
func (d *Daemon) Close() error {
	d.Stop()
	d.mu.Lock()
	cache := d.cache
	d.cache = nil
	d.mu.Unlock()
	return cache.Close()
}

func (d *Daemon) release() {
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release_failed",
			logging.Error(err),
			logging.String("lock", d.lockPath))
	}
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	session, server := d.session, d.server
	d.mu.Unlock()

	status := Status{
		Running:      d.running.Load(),
		LockFilePath: d.lockPath,
		IDCachePath:  d.cfg.IDCachePath(),
		LibraryCount: d.index.Len(),
		Clients:      d.hub.Count(),
	}
	if server != nil {
		status.Address = server.Addr()
	}
	if session != nil {
		status.Session = session.State().String()
		status.Candidates = len(session.Candidates())
	}
	return status
}
