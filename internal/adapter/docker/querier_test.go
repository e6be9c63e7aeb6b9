package docker

import (
	"testing"

	"dockfleet/internal/fleet"

	"github.com/docker/docker/api/types/container"
)

func composeContainer(project, service, state, status string) container.Summary {
	return container.Summary{
		ID:     "id-" + project + "-" + service,
		Image:  "example/" + service,
		State:  state,
		Status: status,
		Labels: map[string]string{
			labelProject:     project,
			labelService:     service,
			labelConfigFiles: "/data/" + project + "/compose.yaml",
			labelWorkingDir:  "/data/" + project,
		},
	}
}

func TestBuildProjects(t *testing.T) {
	t.Run("groups containers by project label", func(t *testing.T) {
		containers := []container.Summary{
			composeContainer("web", "app", "running", "Up 2 hours"),
			composeContainer("web", "db", "running", "Up 2 hours (healthy)"),
			composeContainer("api", "server", "exited", "Exited (0) 3 days ago"),
		}

		projects := buildProjects(containers)
		if len(projects) != 2 {
			t.Fatalf("project count = %d, want 2", len(projects))
		}

		web := projects[0]
		if web.Name != "web" || len(web.Services) != 2 {
			t.Fatalf("web = %+v", web)
		}
		if web.State != "running" {
			t.Fatalf("web.State = %q, want running", web.State)
		}
		if len(web.ConfigFiles) != 1 || web.ConfigFiles[0] != "/data/web/compose.yaml" {
			t.Fatalf("web.ConfigFiles = %v", web.ConfigFiles)
		}
		if web.Services[1].Health != "healthy" {
			t.Fatalf("db health = %q, want healthy", web.Services[1].Health)
		}

		api := projects[1]
		if api.State != "exited" {
			t.Fatalf("api.State = %q, want exited", api.State)
		}
	})

	t.Run("containers without project label skipped", func(t *testing.T) {
		plain := container.Summary{ID: "x", State: "running", Labels: map[string]string{}}
		if projects := buildProjects([]container.Summary{plain}); len(projects) != 0 {
			t.Fatalf("projects = %+v, want none", projects)
		}
	})

	t.Run("newest container sets last updated", func(t *testing.T) {
		older := composeContainer("web", "app", "running", "Up")
		older.Created = 1000
		newer := composeContainer("web", "db", "running", "Up")
		newer.Created = 2000

		projects := buildProjects([]container.Summary{older, newer})
		if got := projects[0].LastUpdated.Unix(); got != 2000 {
			t.Fatalf("LastUpdated = %d, want 2000", got)
		}
	})
}

func TestFoldProjectState(t *testing.T) {
	cases := []struct {
		name   string
		states []string
		want   string
	}{
		{"all running", []string{"running", "running"}, "running"},
		{"some running", []string{"running", "exited"}, "degraded"},
		{"all exited", []string{"exited", "exited"}, "exited"},
		{"restarting wins over exited", []string{"restarting", "exited"}, "restarting"},
		{"all paused", []string{"paused", "paused"}, "paused"},
		{"created only", []string{"created"}, "created"},
		{"unrecognized", []string{"zombie"}, "unknown"},
		{"empty", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			services := make([]fleet.Service, 0, len(tc.states))
			for _, s := range tc.states {
				services = append(services, fleet.Service{State: s})
			}
			if got := foldProjectState(services); got != tc.want {
				t.Errorf("foldProjectState(%v) = %q, want %q", tc.states, got, tc.want)
			}
		})
	}
}

func TestFormatPorts(t *testing.T) {
	ports := []container.Port{
		{PrivatePort: 80, PublicPort: 8080, Type: "tcp", IP: ""},
		{PrivatePort: 80, PublicPort: 8080, Type: "tcp", IP: ""},
		{PrivatePort: 5432, Type: "tcp"},
	}
	got := formatPorts(ports)
	want := []string{"0.0.0.0:8080->80/tcp", "5432/tcp"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("formatPorts() = %v, want %v", got, want)
	}
}

func TestHealthFromStatus(t *testing.T) {
	cases := map[string]string{
		"Up 2 hours (healthy)":             "healthy",
		"Up 5 minutes (unhealthy)":         "unhealthy",
		"Up 10 seconds (health: starting)": "starting",
		"Up 2 hours":                       "",
		"Exited (0) 2 days ago":            "",
	}
	for status, want := range cases {
		if got := healthFromStatus(status); got != want {
			t.Errorf("healthFromStatus(%q) = %q, want %q", status, got, want)
		}
	}
}
