package fleet

import (
	"context"
	"fmt"

	"dockfleet/internal/discovery"
)

// FileSource supplies the current set of discovered compose files, cached.
type FileSource interface {
	GetOrScan(ctx context.Context, bypass bool) ([]discovery.File, error)
	Invalidate()
}

// EngineQuerier supplies the projects currently known to the container
// engine.
type EngineQuerier interface {
	LiveProjects(ctx context.Context) ([]LiveProject, error)
}

// AuditSink records fleet operations for the audit trail. Implementations
// must tolerate concurrent calls.
type AuditSink interface {
	Record(ctx context.Context, operation, subject, detail string) error
}

// QueryError wraps a container-engine communication failure. It is not
// recovered here; callers decide whether to retry or serve stale data.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query container engine: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
