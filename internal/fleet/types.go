// Package fleet reconciles live Docker Compose projects with compose files
// discovered on disk.
//
// The engine is a pure snapshot reducer: every pass combines the current
// filesystem scan with the current engine query into one unified project
// list. It manages no state transitions of its own — operator actions and
// container exits happen externally and are merely observed on the next
// pass.
package fleet

import (
	"fmt"
	"strings"
	"time"
)

// Service is one container-level service of a project. For live projects
// the fields carry real container data; for not-yet-started projects they
// are placeholders synthesized from the compose file's declared services.
type Service struct {
	ID     string
	Name   string
	Image  string
	State  string
	Status string
	Ports  []string
	Health string
}

// LiveProject is one project as reported by the container engine.
// Recreated on every query, never persisted.
type LiveProject struct {
	Name string
	// State is the raw engine-reported project state, e.g. "running".
	State string
	// ConfigFiles holds host-side compose file paths from container
	// labels; they may need translation before local use.
	ConfigFiles []string
	WorkingDir  string
	Services    []Service
	LastUpdated time.Time
}

// UnifiedProject is the reconciled per-project view this package exists to
// produce. Exactly one exists per project name: one for every live project,
// plus one (state NotStarted) for every discovered file not covered by a
// live project.
type UnifiedProject struct {
	Name     string
	Path     string
	State    EntityState
	Services []Service
	// ComposeFiles are the paths reported or discovered for the project.
	ComposeFiles []string
	// ComposeFilePath is the locally readable compose file, empty when
	// none was found.
	ComposeFilePath string
	HasComposeFile  bool
	// Warning carries non-fatal data-quality notes, e.g. a missing
	// compose file or an x-disabled marker.
	Warning          string
	AvailableActions map[string]bool
	LastUpdated      time.Time
}

// ConflictError records two or more active compose files claiming the same
// project name. It is a data condition, not a failure: the affected name is
// absent from the unified list until all but one file is disabled.
// Recomputed on every resolution pass, never persisted.
type ConflictError struct {
	ProjectName          string
	ConflictingFilePaths []string
}

func (c ConflictError) String() string {
	return fmt.Sprintf("project %q defined by %d files: %s",
		c.ProjectName, len(c.ConflictingFilePaths), strings.Join(c.ConflictingFilePaths, ", "))
}
