package discovery

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dockfleet/internal/logging"

	"github.com/compose-spec/compose-go/v2/loader"
	compose "github.com/compose-spec/compose-go/v2/types"
)

// composeFilenames are the file names recognized as compose files, in
// docker compose's own precedence order. Only the first hit per directory
// is taken.
var composeFilenames = []string{
	"compose.yaml",
	"compose.yml",
	"docker-compose.yaml",
	"docker-compose.yml",
}

// disabledExtension is the top-level marker that excludes a file from
// conflict consideration.
const disabledExtension = "x-disabled"

// FSScanner walks a root directory for compose files.
//
// Depth bounds how many directory levels below Root are descended; the
// root itself is level zero, so Depth 1 covers immediate subdirectories.
// Hidden directories and node_modules are skipped.
type FSScanner struct {
	Root  string
	Depth int

	log *slog.Logger
}

// NewFSScanner creates a scanner for root, descending at most depth levels.
func NewFSScanner(root string, depth int) *FSScanner {
	return &FSScanner{Root: root, Depth: depth, log: logging.Component("discovery")}
}

// Scan walks the root and parses every recognized compose file. A failure
// to walk the tree returns a *ScanError; a single unparseable compose file
// is logged and skipped so one broken project cannot hide the rest.
func (s *FSScanner) Scan(ctx context.Context) ([]File, error) {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return nil, &ScanError{Path: s.Root, Err: err}
	}

	var files []File
	seenDirs := make(map[string]bool)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") || name == "node_modules" {
				return fs.SkipDir
			}
			if depthBelow(root, path) > s.Depth {
				return fs.SkipDir
			}
			return nil
		}

		if !isComposeFilename(d.Name()) {
			return nil
		}
		dir := filepath.Dir(path)
		if seenDirs[dir] {
			// compose filename precedence: WalkDir is lexical, so order
			// candidates explicitly per directory instead.
			return nil
		}
		chosen, ok := preferredComposeFile(dir)
		if !ok {
			return nil
		}
		seenDirs[dir] = true

		f, err := s.parseFile(ctx, chosen, dir)
		if err != nil {
			s.log.Warn("skipping unparseable compose file", "path", chosen, "err", err)
			return nil
		}
		files = append(files, f)
		return nil
	})
	if walkErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ScanError{Path: root, Err: walkErr}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func isComposeFilename(name string) bool {
	for _, candidate := range composeFilenames {
		if name == candidate {
			return true
		}
	}
	return false
}

// preferredComposeFile returns the highest-precedence compose file that
// exists in dir.
func preferredComposeFile(dir string) (string, bool) {
	for _, candidate := range composeFilenames {
		path := filepath.Join(dir, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// parseFile loads one compose file. Interpolation and validation are
// skipped: discovery only needs the project name, service keys, and the
// x-disabled marker, and must tolerate files that need env vars to fully
// resolve.
func (s *FSScanner) parseFile(ctx context.Context, path, dir string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}

	details := compose.ConfigDetails{
		WorkingDir:  dir,
		ConfigFiles: []compose.ConfigFile{{Filename: path, Content: data}},
	}
	project, err := loader.LoadWithContext(ctx, details, func(o *loader.Options) {
		o.SetProjectName(loader.NormalizeProjectName(filepath.Base(dir)), false)
		o.SkipInterpolation = true
		o.SkipValidation = true
		o.SkipConsistencyCheck = true
		o.ResolvePaths = false
	})
	if err != nil {
		return File{}, err
	}

	services := make([]string, 0, len(project.Services))
	for name := range project.Services {
		services = append(services, name)
	}
	sort.Strings(services)

	return File{
		ProjectName: project.Name,
		Path:        path,
		Dir:         dir,
		Services:    services,
		Disabled:    extensionTrue(project.Extensions, disabledExtension),
	}, nil
}

// extensionTrue reads a boolean x- extension, tolerating the YAML string
// forms people actually write.
func extensionTrue(ext map[string]any, key string) bool {
	v, ok := ext[key]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	default:
		return false
	}
}

// depthBelow counts directory levels of path below root.
func depthBelow(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
