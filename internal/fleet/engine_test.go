package fleet

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dockfleet/internal/discovery"
)

type fakeFileSource struct {
	mu          sync.Mutex
	files       []discovery.File
	err         error
	scans       int
	invalidated int
}

func (f *fakeFileSource) GetOrScan(ctx context.Context, bypass bool) ([]discovery.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	return f.files, f.err
}

func (f *fakeFileSource) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
}

type fakeQuerier struct {
	live []LiveProject
	err  error
}

func (f *fakeQuerier) LiveProjects(ctx context.Context) ([]LiveProject, error) {
	return f.live, f.err
}

type recordingAudit struct {
	mu      sync.Mutex
	records []string
	err     error
}

func (r *recordingAudit) Record(ctx context.Context, operation, subject, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, operation)
	return r.err
}

func newTestEngine(files *fakeFileSource, querier *fakeQuerier, opts ...Option) *Engine {
	translator := translatorWithFiles("/srv/compose", "")
	return NewEngine(files, querier, translator, opts...)
}

func TestEngineProjects(t *testing.T) {
	t.Run("full pass", func(t *testing.T) {
		files := &fakeFileSource{files: []discovery.File{
			composeFile("web", "/srv/compose/web", "app"),
			composeFile("api", "/srv/compose/api", "server"),
		}}
		querier := &fakeQuerier{live: []LiveProject{{
			Name:     "web",
			State:    "running",
			Services: []Service{{Name: "app", State: "running"}},
		}}}

		engine := newTestEngine(files, querier)
		projects, err := engine.Projects(context.Background(), false)
		if err != nil {
			t.Fatalf("Projects() error = %v", err)
		}
		if len(projects) != 2 {
			t.Fatalf("project count = %d, want 2", len(projects))
		}
		if len(engine.ConflictErrors()) != 0 {
			t.Fatalf("conflicts = %+v, want none", engine.ConflictErrors())
		}
	})

	t.Run("conflicting names withheld and reported", func(t *testing.T) {
		files := &fakeFileSource{files: []discovery.File{
			composeFile("dup", "/srv/compose/a"),
			composeFile("dup", "/srv/compose/b"),
		}}
		engine := newTestEngine(files, &fakeQuerier{})

		projects, err := engine.Projects(context.Background(), false)
		if err != nil {
			t.Fatalf("Projects() error = %v", err)
		}
		if len(projects) != 0 {
			t.Fatalf("projects = %+v, want none", projects)
		}

		conflicts := engine.ConflictErrors()
		if len(conflicts) != 1 || conflicts[0].ProjectName != "dup" {
			t.Fatalf("conflicts = %+v, want one for dup", conflicts)
		}
		if len(conflicts[0].ConflictingFilePaths) != 2 {
			t.Fatalf("conflict paths = %+v, want 2", conflicts[0].ConflictingFilePaths)
		}
	})

	t.Run("scan failure propagates", func(t *testing.T) {
		boom := errors.New("scan failed")
		engine := newTestEngine(&fakeFileSource{err: boom}, &fakeQuerier{})
		if _, err := engine.Projects(context.Background(), false); !errors.Is(err, boom) {
			t.Fatalf("Projects() error = %v, want %v", err, boom)
		}
	})

	t.Run("query failure propagates", func(t *testing.T) {
		boom := &QueryError{Err: errors.New("engine unreachable")}
		engine := newTestEngine(&fakeFileSource{}, &fakeQuerier{err: boom})
		_, err := engine.Projects(context.Background(), false)
		var qe *QueryError
		if !errors.As(err, &qe) {
			t.Fatalf("Projects() error = %v, want QueryError", err)
		}
	})

	t.Run("audit sink notified per pass", func(t *testing.T) {
		audit := &recordingAudit{}
		engine := newTestEngine(&fakeFileSource{}, &fakeQuerier{}, WithAudit(audit))

		if _, err := engine.Projects(context.Background(), false); err != nil {
			t.Fatalf("Projects() error = %v", err)
		}
		if len(audit.records) != 1 || audit.records[0] != "reconcile" {
			t.Fatalf("audit records = %+v, want [reconcile]", audit.records)
		}
	})

	t.Run("audit failure is not fatal", func(t *testing.T) {
		audit := &recordingAudit{err: errors.New("db locked")}
		engine := newTestEngine(&fakeFileSource{}, &fakeQuerier{}, WithAudit(audit))
		if _, err := engine.Projects(context.Background(), false); err != nil {
			t.Fatalf("Projects() error = %v, want nil despite audit failure", err)
		}
	})
}

func TestEngineInvalidateCache(t *testing.T) {
	files := &fakeFileSource{}
	engine := newTestEngine(files, &fakeQuerier{})
	engine.InvalidateCache()
	if files.invalidated != 1 {
		t.Fatalf("invalidated = %d, want 1", files.invalidated)
	}
}
