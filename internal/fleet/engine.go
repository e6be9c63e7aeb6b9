package fleet

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"dockfleet/internal/check"
	"dockfleet/internal/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Engine is the top-level reconciliation orchestrator. Each Projects call
// runs one pass: cached scan, conflict resolution, engine query, matching.
// The only shared mutable state between concurrent passes lives inside the
// FileSource cache and the latest-conflicts slot; everything else is local
// immutable values.
type Engine struct {
	files      FileSource
	querier    EngineQuerier
	matcher    *Matcher
	audit      AuditSink
	tracer     trace.Tracer
	log        *slog.Logger
	conflictMu sync.Mutex
	conflicts  []ConflictError
}

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithAudit attaches an audit sink that records each reconciliation pass.
// Audit failures are logged, never fatal.
func WithAudit(sink AuditSink) Option {
	return func(e *Engine) { e.audit = sink }
}

// NewEngine wires the reconciliation engine. files and querier are
// required; translator bridges host-reported compose paths.
func NewEngine(files FileSource, querier EngineQuerier, translator *PathTranslator, opts ...Option) *Engine {
	check.Assert(files != nil, "NewEngine: files must not be nil")
	check.Assert(querier != nil, "NewEngine: querier must not be nil")
	check.Assert(translator != nil, "NewEngine: translator must not be nil")

	e := &Engine{
		files:   files,
		querier: querier,
		matcher: NewMatcher(translator),
		tracer:  otel.Tracer("dockfleet/fleet"),
		log:     logging.Component("fleet"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Projects runs one reconciliation pass and returns the unified project
// list. bypassCache forces a fresh filesystem scan. Scan and engine-query
// failures propagate; data-quality issues surface as warnings on the
// affected projects and through ConflictErrors.
func (e *Engine) Projects(ctx context.Context, bypassCache bool) ([]UnifiedProject, error) {
	ctx, span := e.tracer.Start(ctx, "fleet.projects",
		trace.WithAttributes(attribute.Bool("fleet.bypass_cache", bypassCache)))
	defer span.End()

	files, err := e.files.GetOrScan(ctx, bypassCache)
	if err != nil {
		return nil, e.fail(span, err)
	}

	resolved, conflicts := ResolveConflicts(files)
	e.setConflicts(conflicts)

	live, err := e.querier.LiveProjects(ctx)
	if err != nil {
		return nil, e.fail(span, err)
	}

	projects := e.matcher.Reconcile(live, resolved)
	span.SetAttributes(
		attribute.Int("fleet.live_projects", len(live)),
		attribute.Int("fleet.discovered_files", len(files)),
		attribute.Int("fleet.projects", len(projects)),
		attribute.Int("fleet.conflicts", len(conflicts)),
	)

	if e.audit != nil {
		detail := fmt.Sprintf("%d projects (%d live, %d discovered), %d conflicts",
			len(projects), len(live), len(files), len(conflicts))
		if auditErr := e.audit.Record(ctx, "reconcile", "", detail); auditErr != nil {
			e.log.Warn("audit record failed", "err", auditErr)
		}
	}

	return projects, nil
}

// ConflictErrors returns the conflicts recorded by the most recent pass.
func (e *Engine) ConflictErrors() []ConflictError {
	e.conflictMu.Lock()
	defer e.conflictMu.Unlock()
	out := make([]ConflictError, len(e.conflicts))
	copy(out, e.conflicts)
	return out
}

// InvalidateCache evicts the discovery cache; the next pass rescans.
func (e *Engine) InvalidateCache() {
	e.files.Invalidate()
}

func (e *Engine) setConflicts(conflicts []ConflictError) {
	e.conflictMu.Lock()
	e.conflicts = conflicts
	e.conflictMu.Unlock()
}

func (e *Engine) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
