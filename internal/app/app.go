package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"tabswitch/internal/config"
	"tabswitch/internal/infrastructure/errors"
	"tabswitch/internal/infrastructure/logging"
	"tabswitch/internal/platform"
	"tabswitch/internal/server"
	"tabswitch/internal/services"
	"tabswitch/internal/types"
)

const serverShutdownTimeout = 5 * time.Second

// App is the main application controller. It owns the discovery and
// action services, keeps the most recent discovery snapshot for tab-id
// routing, and runs the optional HTTP control API.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	logger logging.Logger

	discovery  *services.TabDiscoveryService
	actions    *services.TabActions
	enrichment *services.TabEnrichmentService

	// snapshot maps tab ids from the most recent discovery pass to
	// their Tab values. Ids are only stable within one pass; every
	// discovery replaces the whole map.
	mu       sync.RWMutex
	snapshot map[string]types.Tab

	httpServer *http.Server
}

// NewApp creates the application with all services wired up.
func NewApp() (*App, error) {
	logger := logging.NewDefaultLogger()

	cfg, err := config.Load(logger)
	if err != nil {
		return nil, err
	}

	errors.SetDefaultRetryLogger()

	return newAppWithAPI(platform.NewWindowAPI(), cfg, logger), nil
}

// newAppWithAPI wires the services over an explicit platform API so
// tests can substitute a fake backend.
func newAppWithAPI(api platform.WindowAPI, cfg *config.Config, logger logging.Logger) *App {
	browsers := services.DefaultBrowserConfig()

	a := &App{
		cfg:       cfg,
		logger:    logger,
		discovery: services.NewTabDiscoveryService(api, browsers, cfg.Workers, logger),
		actions:   services.NewTabActions(api, browsers, logger),
		snapshot:  make(map[string]types.Tab),
	}
	if cfg.EnrichmentEnabled {
		a.enrichment = services.NewTabEnrichmentService()
	}

	return a
}

// Startup is called at application startup
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	if a.cfg.APIEnabled {
		a.startHTTPServer()
	}

	a.logger.Info("Application started",
		"api_enabled", a.cfg.APIEnabled,
		"workers", a.cfg.Workers)
}

// DomReady is called after front-end resources have been loaded
func (a *App) DomReady(ctx context.Context) {
}

// BeforeClose is called when the application is about to quit
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	return false
}

// Shutdown is called at application termination
func (a *App) Shutdown(ctx context.Context) {
	if a.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, serverShutdownTimeout)
		defer cancel()
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("HTTP server shutdown failed", "error", err.Error())
		}
	}

	a.logger.Info("Application shutdown completed")
}

func (a *App) startHTTPServer() {
	a.httpServer = &http.Server{
		Addr:              a.cfg.APIAddr,
		Handler:           server.NewHandler(a, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.logger.Info("Control API listening", "addr", a.cfg.APIAddr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.LogAutomationError(a.logger, err, "http_serve", map[string]interface{}{
				"addr": a.cfg.APIAddr,
			})
		}
	}()
}

// DiscoverTabs runs a full discovery pass and replaces the routing
// snapshot. Bound to the frontend and served by the control API.
func (a *App) DiscoverTabs(ctx context.Context) ([]types.Tab, error) {
	if ctx == nil {
		ctx = a.ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}

	discoverCtx, cancel := context.WithTimeout(ctx, a.cfg.DiscoveryTimeout)
	defer cancel()

	tabs, err := a.discovery.Discover(discoverCtx)
	if err != nil {
		return nil, err
	}

	next := make(map[string]types.Tab, len(tabs))
	for _, tab := range tabs {
		next[tab.ID] = tab
	}

	a.mu.Lock()
	a.snapshot = next
	a.mu.Unlock()

	return tabs, nil
}

// ActivateTab activates the tab with the given id from the most recent
// discovery pass.
func (a *App) ActivateTab(id string) (bool, error) {
	tab, err := a.lookupTab(id)
	if err != nil {
		return false, err
	}
	return a.actions.Activate(tab), nil
}

// CloseTab closes the tab with the given id from the most recent
// discovery pass. The snapshot entry is dropped on success; the node
// no longer exists.
func (a *App) CloseTab(id string) (bool, error) {
	tab, err := a.lookupTab(id)
	if err != nil {
		return false, err
	}

	closed := a.actions.Close(tab)
	if closed {
		a.mu.Lock()
		delete(a.snapshot, id)
		a.mu.Unlock()
	}
	return closed, nil
}

// PreviewTab fetches page metadata for the tab with the given id.
func (a *App) PreviewTab(id string) (*types.TabPreview, error) {
	if a.enrichment == nil {
		return nil, errors.NewAutomationError("preview_tab",
			fmt.Errorf("enrichment is disabled"),
			errors.ErrCodeValidation)
	}

	tab, err := a.lookupTab(id)
	if err != nil {
		return nil, err
	}
	return a.enrichment.Preview(tab)
}

// lookupTab resolves a tab id against the current snapshot.
func (a *App) lookupTab(id string) (types.Tab, error) {
	a.mu.RLock()
	tab, ok := a.snapshot[id]
	a.mu.RUnlock()

	if !ok {
		return types.Tab{}, errors.NewAutomationErrorWithContext("lookup_tab",
			fmt.Errorf("tab %s is not in the current snapshot", id),
			errors.ErrCodeStaleElement,
			map[string]string{"tab": id})
	}
	return tab, nil
}

// GetLogger returns the application's structured logger
func (a *App) GetLogger() logging.Logger {
	return a.logger
}

// Config returns the loaded application configuration
func (a *App) Config() *config.Config {
	return a.cfg
}
