package fleet

import (
	"os"
	"path/filepath"
	"strings"
)

// PathTranslator bridges paths reported by the container engine, which
// reflect the host filesystem, into paths this process can read. The
// engine may run against a remote or containerized Docker daemon whose
// compose root is mounted here under a different prefix.
type PathTranslator struct {
	// Root is the local compose root directory.
	Root string
	// HostPathMapping is an optional host-side prefix that corresponds
	// to Root. Empty means no explicit mapping is configured.
	HostPathMapping string
	// Exists is the file-existence probe, injectable for tests.
	Exists func(path string) bool
}

// NewPathTranslator creates a translator for the given local root and
// optional host prefix.
func NewPathTranslator(root, hostPathMapping string) *PathTranslator {
	return &PathTranslator{
		Root:            root,
		HostPathMapping: hostPathMapping,
		Exists:          fileExists,
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Translate converts a host-reported compose file path into a local path,
// or returns "" when no translation applies. Callers must treat "" as
// "project has no readable file", never as an error.
//
// Steps, first success wins:
//  1. The path already lives under Root: same filesystem view, returned
//     as-is (separators normalized).
//  2. The configured HostPathMapping prefix is stripped and the remainder
//     rebased onto Root. No existence check: the mapping is authoritative.
//  3. Fallback for hosts whose prefixes cannot be mapped logically
//     (Windows drive letters and the like): strip leading path segments
//     one at a time and probe Root + suffix for an existing file. This is
//     a linear scan over the path depth.
func (t *PathTranslator) Translate(hostPath string) string {
	if strings.TrimSpace(hostPath) == "" {
		return ""
	}

	norm := filepath.ToSlash(strings.ReplaceAll(hostPath, `\`, "/"))
	root := filepath.ToSlash(t.Root)

	if root != "" && strings.HasPrefix(norm, root) {
		return filepath.FromSlash(norm)
	}

	if mapping := filepath.ToSlash(t.HostPathMapping); mapping != "" && strings.HasPrefix(norm, mapping) {
		rest := strings.TrimPrefix(norm, mapping)
		return filepath.Join(t.Root, filepath.FromSlash(rest))
	}

	segments := splitSegments(norm)
	for i := range segments {
		candidate := filepath.Join(append([]string{t.Root}, segments[i:]...)...)
		if t.exists(candidate) {
			return candidate
		}
	}
	return ""
}

// FileExists probes whether a translated path is a readable file, using
// the same probe the fallback search uses.
func (t *PathTranslator) FileExists(path string) bool {
	return t.exists(path)
}

func (t *PathTranslator) exists(path string) bool {
	if t.Exists != nil {
		return t.Exists(path)
	}
	return fileExists(path)
}

// splitSegments breaks a slash-normalized path into non-empty segments,
// dropping drive-letter prefixes like "C:".
func splitSegments(p string) []string {
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if len(out) == 0 && strings.HasSuffix(part, ":") {
			continue
		}
		out = append(out, part)
	}
	return out
}
