// Package discovery finds compose files on disk and caches scan results.
//
// The scanner walks a configured root directory and parses every compose
// file it recognizes into a File. The cache bounds how often that walk
// happens: reads are lock-free, at most one scan runs at a time, and
// concurrent callers share the in-flight scan's result.
package discovery

import (
	"context"
	"fmt"
)

// File is one compose file found on disk. Values are recreated on every
// scan and never mutated afterwards.
type File struct {
	// ProjectName is the compose project name: the file's top-level name
	// field when declared, otherwise derived from the directory name.
	ProjectName string
	Path        string
	Dir         string
	// Services holds the service keys declared in the file, sorted.
	Services []string
	// Disabled is true when the file declares x-disabled: true, which
	// excludes it from conflict consideration.
	Disabled bool
}

// Scanner produces the current set of compose files.
type Scanner interface {
	Scan(ctx context.Context) ([]File, error)
}

// ScanError reports a filesystem failure during a scan. Individual
// malformed compose files are skipped, not reported through this.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }
