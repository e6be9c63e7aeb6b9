// Package cmdutil wires the fleet engine for CLI commands.
package cmdutil

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"dockfleet/config"
	dockeradapter "dockfleet/internal/adapter/docker"
	"dockfleet/internal/adapter/sqlite"
	"dockfleet/internal/discovery"
	"dockfleet/internal/fleet"
)

// App bundles the wired engine with the resources it owns.
type App struct {
	Config config.Config
	Engine *fleet.Engine
	Audit  *sqlite.AuditStore

	querier *dockeradapter.Querier
}

// Build loads configuration (configPath empty means the default location)
// and wires scanner, cache, translator, querier and audit store into an
// engine. The audit store is best-effort: a failure to open it degrades to
// an engine without audit, not a startup error.
func Build(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	scanner := discovery.NewFSScanner(cfg.Root, cfg.ScanDepth)
	cache := discovery.NewCache(scanner, cfg.CacheTTL())
	translator := fleet.NewPathTranslator(cfg.Root, cfg.HostPathMapping)

	querier, err := dockeradapter.NewQuerier(cfg.DockerHost)
	if err != nil {
		return nil, fmt.Errorf("connect to docker: %w", err)
	}

	var opts []fleet.Option
	audit, auditErr := sqlite.Open(filepath.Join(cfg.DataDir, "audit.db"))
	if auditErr != nil {
		slog.Warn("audit store unavailable", "err", auditErr)
		audit = nil
	} else {
		opts = append(opts, fleet.WithAudit(audit))
	}

	return &App{
		Config:  cfg,
		Engine:  fleet.NewEngine(cache, querier, translator, opts...),
		Audit:   audit,
		querier: querier,
	}, nil
}

// Close releases the docker client and audit database.
func (a *App) Close() {
	if a.querier != nil {
		_ = a.querier.Close()
	}
	if a.Audit != nil {
		_ = a.Audit.Close()
	}
}
