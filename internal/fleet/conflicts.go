package fleet

import (
	"log/slog"
	"sort"

	"dockfleet/internal/discovery"

	"github.com/samber/lo"
)

// ResolveConflicts collapses duplicate project names into at most one
// authoritative file per name.
//
// Per name group (case-sensitive on the derived name, files sorted by path
// for determinism): a lone file always wins; with several files, exactly
// one non-disabled file wins and its disabled siblings are dropped
// silently — that is the intended disable-the-losers mechanism. All files
// disabled means the name is simply unavailable; two or more active files
// is a ConflictError and nothing is included for that name.
func ResolveConflicts(files []discovery.File) ([]discovery.File, []ConflictError) {
	groups := lo.GroupBy(files, func(f discovery.File) string { return f.ProjectName })

	names := lo.Keys(groups)
	sort.Strings(names)

	resolved := make([]discovery.File, 0, len(groups))
	var conflicts []ConflictError

	for _, name := range names {
		group := groups[name]
		sort.Slice(group, func(i, j int) bool { return group[i].Path < group[j].Path })

		if len(group) == 1 {
			resolved = append(resolved, group[0])
			continue
		}

		active := lo.Filter(group, func(f discovery.File, _ int) bool { return !f.Disabled })
		switch len(active) {
		case 1:
			resolved = append(resolved, active[0])
		case 0:
			slog.Debug("all compose files for project disabled", "project", name, "files", len(group))
		default:
			conflicts = append(conflicts, ConflictError{
				ProjectName: name,
				ConflictingFilePaths: lo.Map(active, func(f discovery.File, _ int) string {
					return f.Path
				}),
			})
		}
	}

	return resolved, conflicts
}
