package fleet

import (
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"dockfleet/internal/discovery"
	"dockfleet/internal/logging"

	"github.com/samber/lo"
)

// Warnings attached to unified projects.
const (
	WarningNoComposeFile = "No compose file found for this project"
	WarningDisabled      = "Project is disabled via x-disabled"
)

// serviceStateUnknown marks placeholder services synthesized for a live
// project that reported no containers of its own.
const serviceStateUnknown = "unknown"

// Matcher pairs live projects with discovered compose files and produces
// the unified project list. It holds no mutable state; a Matcher is safe
// for concurrent use.
type Matcher struct {
	translator *PathTranslator
	log        *slog.Logger
}

// NewMatcher creates a matcher using translator to bridge host-reported
// paths.
func NewMatcher(translator *PathTranslator) *Matcher {
	return &Matcher{translator: translator, log: logging.Component("matcher")}
}

// fileIndex provides the O(1) lookups the matching strategies need.
// Keys are case-insensitive; ordered preserves input order for the
// deterministic structural scan and for synthesis.
type fileIndex struct {
	byName  map[string]discovery.File
	byPath  map[string]discovery.File
	ordered []discovery.File
}

func newFileIndex(files []discovery.File) *fileIndex {
	idx := &fileIndex{
		byName:  make(map[string]discovery.File, len(files)),
		byPath:  make(map[string]discovery.File, len(files)),
		ordered: files,
	}
	for _, f := range files {
		idx.byName[strings.ToLower(f.ProjectName)] = f
		idx.byPath[pathKey(f.Path)] = f
	}
	return idx
}

func pathKey(p string) string {
	return strings.ToLower(filepath.ToSlash(p))
}

// matchFunc is one matching strategy. Strategies are tried in order with
// short-circuiting fallthrough; the order is a hard contract, name match
// always wins over path-based matches.
type matchFunc func(lp LiveProject, idx *fileIndex) (discovery.File, bool)

func (m *Matcher) strategies() []matchFunc {
	return []matchFunc{
		m.matchByName,
		m.matchByTranslatedPath,
		m.matchByLayout,
	}
}

func (m *Matcher) match(lp LiveProject, idx *fileIndex) (discovery.File, bool) {
	for _, strategy := range m.strategies() {
		if f, ok := strategy(lp, idx); ok {
			return f, true
		}
	}
	return discovery.File{}, false
}

func (m *Matcher) matchByName(lp LiveProject, idx *fileIndex) (discovery.File, bool) {
	f, ok := idx.byName[strings.ToLower(lp.Name)]
	return f, ok
}

func (m *Matcher) matchByTranslatedPath(lp LiveProject, idx *fileIndex) (discovery.File, bool) {
	for _, raw := range lp.ConfigFiles {
		translated := m.translator.Translate(raw)
		if translated == "" {
			continue
		}
		if f, ok := idx.byPath[pathKey(translated)]; ok {
			return f, true
		}
	}
	return discovery.File{}, false
}

// matchByLayout compares the base filename and immediate parent directory
// of the live project's first config path against each discovered file.
func (m *Matcher) matchByLayout(lp LiveProject, idx *fileIndex) (discovery.File, bool) {
	if len(lp.ConfigFiles) == 0 {
		return discovery.File{}, false
	}
	norm := filepath.ToSlash(strings.ReplaceAll(lp.ConfigFiles[0], `\`, "/"))
	base := path.Base(norm)
	parent := path.Base(path.Dir(norm))

	for _, f := range idx.ordered {
		if strings.EqualFold(base, filepath.Base(f.Path)) &&
			strings.EqualFold(parent, filepath.Base(f.Dir)) {
			return f, true
		}
	}
	return discovery.File{}, false
}

// Reconcile produces the unified project list from a live-project snapshot
// and the (conflict-resolved) discovered files. Live projects keep their
// input order; synthesized not-started projects follow, sorted by name.
// Output names are pairwise distinct.
func (m *Matcher) Reconcile(live []LiveProject, files []discovery.File) []UnifiedProject {
	idx := newFileIndex(files)
	matchedPaths := make(map[string]bool, len(files))
	takenNames := make(map[string]bool, len(live)+len(files))

	out := make([]UnifiedProject, 0, len(live)+len(files))
	for _, lp := range live {
		up := m.unifyLive(lp, idx, matchedPaths)
		takenNames[strings.ToLower(up.Name)] = true
		out = append(out, up)
	}

	var synthesized []UnifiedProject
	for _, f := range idx.ordered {
		if matchedPaths[pathKey(f.Path)] {
			continue
		}
		key := strings.ToLower(f.ProjectName)
		if takenNames[key] {
			continue
		}
		takenNames[key] = true
		synthesized = append(synthesized, synthesizeNotStarted(f))
	}
	sort.Slice(synthesized, func(i, j int) bool {
		return synthesized[i].Name < synthesized[j].Name
	})

	return append(out, synthesized...)
}

// unifyLive builds the unified record for one live project, marking the
// matched file as consumed. A project no strategy can resolve degrades to
// fileless with a warning; it never fails the pass.
func (m *Matcher) unifyLive(lp LiveProject, idx *fileIndex, matchedPaths map[string]bool) UnifiedProject {
	state := ParseState(lp.State)
	up := UnifiedProject{
		Name:         lp.Name,
		Path:         lp.WorkingDir,
		State:        state,
		Services:     lp.Services,
		ComposeFiles: lp.ConfigFiles,
		LastUpdated:  lp.LastUpdated,
	}

	if f, ok := m.match(lp, idx); ok {
		matchedPaths[pathKey(f.Path)] = true
		up.HasComposeFile = true
		up.ComposeFilePath = f.Path
		up.Path = f.Dir
		if len(up.Services) == 0 {
			// The engine knows the project but reported no containers;
			// show the declared services instead of an empty list.
			up.Services = placeholderServices(f.Services, serviceStateUnknown)
		}
	} else if recovered := m.recoverDirectPath(lp); recovered != "" {
		up.HasComposeFile = true
		up.ComposeFilePath = recovered
	} else {
		m.log.Debug("no compose file for live project", "project", lp.Name)
		up.Warning = WarningNoComposeFile
	}

	up.AvailableActions = ComputeActions(up.HasComposeFile, state)
	return up
}

// recoverDirectPath is the last resort after all strategies miss: translate
// the first raw config path and accept it when it exists locally, even
// without a discovered-file record (the file may sit outside the scan
// root or beyond the depth limit).
func (m *Matcher) recoverDirectPath(lp LiveProject) string {
	if len(lp.ConfigFiles) == 0 {
		return ""
	}
	translated := m.translator.Translate(lp.ConfigFiles[0])
	if translated == "" || !m.translator.FileExists(translated) {
		return ""
	}
	return translated
}

func synthesizeNotStarted(f discovery.File) UnifiedProject {
	up := UnifiedProject{
		Name:             f.ProjectName,
		Path:             f.Dir,
		State:            StateNotStarted,
		Services:         placeholderServices(f.Services, string(StateNotStarted)),
		ComposeFiles:     []string{f.Path},
		ComposeFilePath:  f.Path,
		HasComposeFile:   true,
		AvailableActions: ComputeActions(true, StateNotStarted),
	}
	if f.Disabled {
		up.Warning = WarningDisabled
	}
	return up
}

func placeholderServices(names []string, state string) []Service {
	return lo.Map(names, func(name string, _ int) Service {
		return Service{Name: name, State: state}
	})
}
