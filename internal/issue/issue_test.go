// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	t.Parallel()

	if InteractionFailedId != 1 {
		t.Errorf("InteractionFailedId = %d, want 1", InteractionFailedId)
	}
	for _, i := range Values() {
		if Get(i.Id()) != i {
			t.Errorf("Get(%d) does not return the catalog entry", i.Id())
		}
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{InteractionFailedId, false, "could not finish"},
		{ControllerMisbehavedId, false, "could not be understood"},
		{InternalErrorId, false, "Internal error"},
		{ControllerStartFailedId, false, "could not be started"},
		{ConfigInvalidId, false, "invalid value"},
		{ProgramNotFoundId, false, "Program-NAME"},
		{LibraryNotFoundId, false, "CLibrary-NAME-Includes"},
		{CompilerNotFoundId, false, "CXXCompiler=PATH"},
		{Id(9999), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			t.Parallel()

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
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}
}

func TestValues_Ordered(t *testing.T) {
	t.Parallel()

	issues := Values()
	if len(issues) != 8 {
		t.Fatalf("Values() returned %d issues, want 8", len(issues))
	}
	for i := 1; i < len(issues); i++ {
		if issues[i-1].Id() >= issues[i].Id() {
			t.Errorf("Values() not ordered at %d", i)
		}
	}
}

func TestIssue_ExtLinksClone(t *testing.T) {
	t.Parallel()

	issue := Get(LibraryNotFoundId)
	links := issue.ExtLinks()
	if len(links) == 0 {
		t.Fatal("ExtLinks() is empty")
	}
	original := links[0]
	links[0] = "modified"
	if issue.ExtLinks()[0] != original {
		t.Error("ExtLinks() should return a clone")
	}
	if !strings.Contains(issue.Markdown(), "## See also") {
		t.Error("Markdown() should list external links")
	}
}

func TestIssue_Render(t *testing.T) {
	// Replaces the package-level renderer; not parallel.
	originalRender := render
	defer func() { render = originalRender }()

	var gotStyle string
	render = func(in string, stylePath string) (string, error) {
		gotStyle = stylePath
		return "RENDERED:" + in, nil
	}

	rendered, err := Get(ProgramNotFoundId).Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.HasPrefix(rendered, "RENDERED:") || !strings.Contains(rendered, "PATH") {
		t.Errorf("Render() = %q", rendered)
	}
	if gotStyle != "auto" {
		t.Errorf("style = %q, want auto", gotStyle)
	}
}
