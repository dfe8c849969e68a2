// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

var allIds = []Id{
	InterpreterNotFoundId,
	InterpreterTooOldId,
	SetupStepFailedId,
	ManifestNotFoundId,
	TargetNotFoundId,
	EnvironmentLockedId,
	ConfigLoadFailedId,
	PermissionDeniedId,
	ProjectDirUnresolvedId,
	UnsafeEnvDirId,
}

func TestId_Constants(t *testing.T) {
	seen := make(map[Id]bool)
	for _, id := range allIds {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}

	if InterpreterNotFoundId != 1 {
		t.Errorf("InterpreterNotFoundId = %d, want 1", InterpreterNotFoundId)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{InterpreterNotFoundId, false, "Python interpreter not found"},
		{InterpreterTooOldId, false, "too old"},
		{SetupStepFailedId, false, "Environment setup failed"},
		{ManifestNotFoundId, false, "Project files not found"},
		{TargetNotFoundId, false, "Tool not found"},
		{EnvironmentLockedId, false, "Environment is in use"},
		{ConfigLoadFailedId, false, "Failed to load configuration"},
		{PermissionDeniedId, false, "Permission denied"},
		{Id(9999), true, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)

			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}

			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("Id() = %d, want %d", issue.Id(), tt.id)
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	issues := Values()

	if len(issues) != len(allIds) {
		t.Fatalf("Values() returned %d issues, want %d", len(issues), len(allIds))
	}
	for i, issue := range issues {
		if issue.Id() != allIds[i] {
			t.Errorf("Values()[%d].Id() = %d, want %d (ordered by id)", i, issue.Id(), allIds[i])
		}
		if issue.MarkdownMsg() == "" {
			t.Errorf("Issue %d has empty MarkdownMsg", issue.Id())
		}
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	issue := Get(InterpreterNotFoundId)

	links := issue.ExtLinks()
	if len(links) == 0 {
		t.Fatal("expected external links")
	}
	original := links[0]
	links[0] = "modified"
	if issue.ExtLinks()[0] != original {
		t.Error("ExtLinks() should return a clone")
	}
}

func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	var gotStyle string
	render = func(in string, stylePath string) (string, error) {
		gotStyle = stylePath
		return in, nil
	}

	withLinks := &Issue{
		id:       Id(9999),
		mdMsg:    "# Test Issue\n\nThis is a test.",
		docLinks: []HttpLink{"https://docs.example.com"},
		extLinks: []HttpLink{"https://external.example.com"},
	}
	rendered, err := withLinks.Render("dark")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if gotStyle != "dark" {
		t.Errorf("style = %q, want dark", gotStyle)
	}
	for _, want := range []string{"See also", "https://docs.example.com", "https://external.example.com"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Render() output missing %q", want)
		}
	}

	noLinks := &Issue{id: Id(9998), mdMsg: "# Test Issue\n\nNo links here."}
	rendered, err = noLinks.Render("")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(rendered, "See also") {
		t.Error("Render() without links should not contain 'See also'")
	}
}

func TestAllIssuesAreRenderable(t *testing.T) {
	for _, issue := range Values() {
		rendered, err := issue.Render("notty")
		if err != nil {
			t.Errorf("Issue %d failed to render: %v", issue.Id(), err)
		}
		if strings.TrimSpace(rendered) == "" {
			t.Errorf("Issue %d rendered to empty string", issue.Id())
		}
	}
}
