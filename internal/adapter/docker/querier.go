// Package docker implements the fleet.EngineQuerier port against the
// Docker Engine API. Compose projects are reconstructed from container
// labels; no compose binary is involved.
package docker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"dockfleet/internal/fleet"
	"dockfleet/internal/logging"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	dockerfilters "github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

var _ fleet.EngineQuerier = (*Querier)(nil)

// Labels compose writes on every container it creates.
const (
	labelProject     = "com.docker.compose.project"
	labelService     = "com.docker.compose.service"
	labelConfigFiles = "com.docker.compose.project.config_files"
	labelWorkingDir  = "com.docker.compose.project.working_dir"
)

// Querier lists compose projects currently known to the Docker Engine.
type Querier struct {
	cli *client.Client
	log *slog.Logger
}

// NewQuerier creates a querier. host overrides the engine endpoint;
// DOCKER_HOST in the environment wins over both.
func NewQuerier(host string) (*Querier, error) {
	opts := []client.Opt{client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	opts = append(opts, client.FromEnv)

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Querier{cli: cli, log: logging.Component("docker")}, nil
}

// NewQuerierFromClient wraps an existing Docker client.
func NewQuerierFromClient(cli *client.Client) *Querier {
	return &Querier{cli: cli, log: logging.Component("docker")}
}

// LiveProjects lists all containers carrying a compose project label,
// including stopped ones, and folds them into per-project records. Engine
// communication failures surface as *fleet.QueryError.
func (q *Querier) LiveProjects(ctx context.Context) ([]fleet.LiveProject, error) {
	filters := dockerfilters.NewArgs()
	filters.Add("label", labelProject)

	containers, err := q.cli.ContainerList(ctx, container.ListOptions{All: true, Filters: filters})
	if err != nil {
		return nil, &fleet.QueryError{Err: fmt.Errorf("list containers: %w", err)}
	}

	projects := buildProjects(containers)
	q.backfillHealth(ctx, projects)
	q.log.Debug("live project query", "containers", len(containers), "projects", len(projects))
	return projects, nil
}

// backfillHealth fills in health for running services whose ps status line
// carried no health marker. Containers may vanish between list and inspect;
// that is not an error.
func (q *Querier) backfillHealth(ctx context.Context, projects []fleet.LiveProject) {
	for pi := range projects {
		for si := range projects[pi].Services {
			s := &projects[pi].Services[si]
			if s.Health != "" || !strings.EqualFold(s.State, "running") {
				continue
			}
			info, err := q.cli.ContainerInspect(ctx, s.ID)
			if err != nil {
				if !errdefs.IsNotFound(err) {
					q.log.Debug("inspect container", "id", s.ID, "err", err)
				}
				continue
			}
			if info.State != nil && info.State.Health != nil {
				s.Health = strings.ToLower(info.State.Health.Status)
			}
		}
	}
}

// WaitReady blocks until the Docker daemon answers a ping.
func (q *Querier) WaitReady(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	waiting := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_, err := q.cli.Ping(ctx)
			if err == nil {
				if waiting {
					q.log.Debug("daemon reachable")
				}
				return nil
			}
			if !client.IsErrConnectionFailed(err) {
				return fmt.Errorf("connect to docker daemon: %w", err)
			}
			if !waiting {
				waiting = true
				q.log.Debug("waiting for docker daemon")
			}
		}
	}
}

func (q *Querier) Close() error {
	return q.cli.Close()
}

// buildProjects groups container summaries by compose project label,
// preserving first-seen order within the engine's listing.
func buildProjects(containers []container.Summary) []fleet.LiveProject {
	byProject := make(map[string]*fleet.LiveProject)
	var order []string

	for _, c := range containers {
		project := c.Labels[labelProject]
		if project == "" {
			continue
		}

		lp, ok := byProject[project]
		if !ok {
			lp = &fleet.LiveProject{
				Name:        project,
				ConfigFiles: splitConfigFiles(c.Labels[labelConfigFiles]),
				WorkingDir:  c.Labels[labelWorkingDir],
			}
			byProject[project] = lp
			order = append(order, project)
		}

		lp.Services = append(lp.Services, containerService(c))
		if updated := time.Unix(c.Created, 0).UTC(); updated.After(lp.LastUpdated) {
			lp.LastUpdated = updated
		}
	}

	out := make([]fleet.LiveProject, 0, len(order))
	for _, name := range order {
		lp := byProject[name]
		lp.State = foldProjectState(lp.Services)
		out = append(out, *lp)
	}
	return out
}

func containerService(c container.Summary) fleet.Service {
	name := c.Labels[labelService]
	if name == "" && len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}
	return fleet.Service{
		ID:     c.ID,
		Name:   name,
		Image:  c.Image,
		State:  c.State,
		Status: c.Status,
		Ports:  formatPorts(c.Ports),
		Health: healthFromStatus(c.Status),
	}
}

// foldProjectState reduces container states to one project state: all
// running is running, some running is degraded, otherwise the most telling
// non-running state wins.
func foldProjectState(services []fleet.Service) string {
	if len(services) == 0 {
		return ""
	}

	running := 0
	present := make(map[string]bool, len(services))
	for _, s := range services {
		state := strings.ToLower(s.State)
		present[state] = true
		if state == "running" {
			running++
		}
	}

	switch {
	case running == len(services):
		return "running"
	case running > 0:
		return "degraded"
	}

	for _, state := range []string{"restarting", "paused", "exited", "created", "dead"} {
		if present[state] {
			return state
		}
	}
	return "unknown"
}

func splitConfigFiles(label string) []string {
	if strings.TrimSpace(label) == "" {
		return nil
	}
	parts := strings.Split(label, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// formatPorts renders port bindings docker-ps style, deduplicated and
// sorted for stable output.
func formatPorts(ports []container.Port) []string {
	if len(ports) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(ports))
	out := make([]string, 0, len(ports))
	for _, p := range ports {
		proto := p.Type
		if proto == "" {
			proto = "tcp"
		}
		target := nat.Port(fmt.Sprintf("%d/%s", p.PrivatePort, proto))

		var rendered string
		if p.PublicPort > 0 {
			host := p.IP
			if host == "" {
				host = "0.0.0.0"
			}
			rendered = fmt.Sprintf("%s:%d->%s", host, p.PublicPort, target)
		} else {
			rendered = string(target)
		}
		if !seen[rendered] {
			seen[rendered] = true
			out = append(out, rendered)
		}
	}
	sort.Strings(out)
	return out
}

func healthFromStatus(status string) string {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "(healthy)"):
		return "healthy"
	case strings.Contains(s, "(unhealthy)"):
		return "unhealthy"
	case strings.Contains(s, "(health: starting)"):
		return "starting"
	default:
		return ""
	}
}
