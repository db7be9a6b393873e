// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

// stubRender replaces glamour for the duration of the test with an identity renderer.
func stubRender(t *testing.T) {
	t.Helper()

	original := render
	t.Cleanup(func() { render = original })
	render = func(in string, _ string) (string, error) {
		return in, nil
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		contains string
	}{
		{SchemaNotFoundId, "Schema document not found"},
		{SchemaParseErrorId, "Failed to parse the schema"},
		{EnvFileNotFoundId, "Env file not found"},
		{StaleFileId, "changed on disk"},
		{MissingVariableId, "Variable not present"},
		{ContainerEngineNotFoundId, "Container engine not found"},
		{ServiceRestartFailedId, "failed to restart"},
		{PkiToolFailedId, "PKI tool failed"},
		{ConfigLoadFailedId, "Failed to load configuration"},
		{PermissionDeniedId, "Permission denied"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)
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

	if Get(Id(9999)) != nil {
		t.Error("Get(9999) should return nil")
	}
}

func TestValues(t *testing.T) {
	issues := Values()
	if len(issues) != int(PermissionDeniedId) {
		t.Errorf("Values() returned %d issues, want %d", len(issues), PermissionDeniedId)
	}

	seen := make(map[Id]bool)
	for _, issue := range issues {
		if issue.Id() == 0 || seen[issue.Id()] {
			t.Errorf("unexpected or duplicate ID %d", issue.Id())
		}
		seen[issue.Id()] = true
	}
}

func TestIssue_Render(t *testing.T) {
	stubRender(t)

	rendered, err := Get(StaleFileId).Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(rendered, "Restart the editing session") {
		t.Errorf("Render() output missing body:\n%s", rendered)
	}
	if strings.Contains(rendered, "See also") {
		t.Error("issue without links should not render a See also section")
	}
}

func TestIssue_Render_WithLinks(t *testing.T) {
	stubRender(t)

	testIssue := &Issue{
		id:       Id(9999),
		mdMsg:    "# Test Issue",
		docLinks: []HttpLink{"https://docs.example.com"},
		extLinks: []HttpLink{"https://external.example.com"},
	}

	rendered, err := testIssue.Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	for _, want := range []string{"## See also", "- <https://docs.example.com>", "- <https://external.example.com>"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Render() missing %q:\n%s", want, rendered)
		}
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	testIssue := &Issue{docLinks: []HttpLink{"a"}, extLinks: []HttpLink{"b"}}

	testIssue.DocLinks()[0] = "modified"
	testIssue.ExtLinks()[0] = "modified"

	if testIssue.DocLinks()[0] != "a" || testIssue.ExtLinks()[0] != "b" {
		t.Error("link accessors should return clones")
	}
}

// TestAllIssuesRenderWithGlamour runs the real renderer so that every catalog
// entry is known to be valid markdown for the notty style.
func TestAllIssuesRenderWithGlamour(t *testing.T) {
	t.Parallel()

	for _, issue := range Values() {
		rendered, err := issue.Render("notty")
		if err != nil {
			t.Errorf("issue %d failed to render: %v", issue.Id(), err)
		}
		if strings.TrimSpace(rendered) == "" {
			t.Errorf("issue %d rendered to empty string", issue.Id())
		}
	}
}
