// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

// stubRender replaces the glamour renderer with the identity function for
// the duration of the test.
func stubRender(t *testing.T) {
	t.Helper()
	original := render
	t.Cleanup(func() { render = original })
	render = func(in string, _ string) (string, error) { return in, nil }
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		contains string
	}{
		{DataDirNotFoundId, "No data directory found"},
		{DocumentReadFailedId, "could not be read"},
		{DocumentParseFailedId, "not valid YAML"},
		{BookWriteFailedId, "could not be written"},
		{ConfigLoadFailedId, "Failed to load configuration"},
		{PermissionDeniedId, "Permission denied"},
		{WatchFailedId, "watcher stopped"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			got := Get(tt.id)
			if got == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if got.Id() != tt.id {
				t.Errorf("Id() = %d, want %d", got.Id(), tt.id)
			}
			if !strings.Contains(string(got.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}

	if Get(Id(9999)) != nil {
		t.Error("Get() of an unknown id should return nil")
	}
}

func TestValues(t *testing.T) {
	values := Values()
	if len(values) != len(issues) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), len(issues))
	}
	for i, v := range values {
		if v.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d (sorted, starting at 1)", i, v.Id(), i+1)
		}
	}
}

func TestIssue_LinksAreCloned(t *testing.T) {
	watch := Get(WatchFailedId)
	links := watch.ExtLinks()
	if len(links) == 0 {
		t.Fatal("WatchFailedId should carry an external link")
	}
	links[0] = "modified"
	if watch.ExtLinks()[0] == "modified" {
		t.Error("ExtLinks() should return a clone")
	}
	if watch.DocLinks() != nil {
		t.Errorf("DocLinks() = %v, want nil", watch.DocLinks())
	}
}

func TestIssue_Render(t *testing.T) {
	stubRender(t)

	for _, i := range Values() {
		rendered, err := i.Render("notty")
		if err != nil {
			t.Errorf("issue %d failed to render: %v", i.Id(), err)
		}
		if rendered == "" {
			t.Errorf("issue %d rendered to empty string", i.Id())
		}
	}
}

func TestIssue_Render_SeeAlso(t *testing.T) {
	stubRender(t)

	withLinks := &Issue{
		id:       Id(9999),
		mdMsg:    "# Test",
		docLinks: []HttpLink{"https://docs.example.com"},
	}
	rendered, err := withLinks.Render("")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(rendered, "See also") || !strings.Contains(rendered, "https://docs.example.com") {
		t.Errorf("Render() with links = %q", rendered)
	}

	noLinks := &Issue{id: Id(9998), mdMsg: "# Test"}
	rendered, err = noLinks.Render("")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if strings.Contains(rendered, "See also") {
		t.Error("Render() without links should not contain 'See also'")
	}
}

func TestIssue_RenderWithGlamour(t *testing.T) {
	rendered, err := Get(BookWriteFailedId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(rendered, "mkdir -p json") {
		t.Errorf("rendered guide should keep the code block, got:\n%s", rendered)
	}
}
