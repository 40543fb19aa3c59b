package parser

import (
	"testing"
)

func TestExtractHeadings(t *testing.T) {
	t.Run("extracts levels and lines", func(t *testing.T) {
		content := "# Title\n\n## When to Use\n\nText.\n\n### Detail\n"

		headings := ExtractHeadings(content, 1)
		if len(headings) != 3 {
			t.Fatalf("got %d headings, want 3", len(headings))
		}

		if headings[0].Level != 1 || headings[0].Text != "Title" {
			t.Errorf("first heading = %+v", headings[0])
		}
		if headings[1].Line != 3 {
			t.Errorf("second heading line = %d, want 3", headings[1].Line)
		}
		if headings[2].Level != 3 {
			t.Errorf("third heading level = %d, want 3", headings[2].Level)
		}
	})

	t.Run("offsets lines by start", func(t *testing.T) {
		// Body extracted after a 4-line front-matter block.
		headings := ExtractHeadings("# Title\n", 5)
		if len(headings) != 1 {
			t.Fatalf("got %d headings, want 1", len(headings))
		}
		if headings[0].Line != 5 {
			t.Errorf("line = %d, want 5", headings[0].Line)
		}
	})

	t.Run("ignores hashes in code fences", func(t *testing.T) {
		content := "# Title\n\n```bash\n# not a heading\n```\n"

		headings := ExtractHeadings(content, 1)
		if len(headings) != 1 {
			t.Errorf("got %d headings, want 1", len(headings))
		}
	})
}

func TestHasCodeFence(t *testing.T) {
	if !HasCodeFence("# T\n\n```bash\ngit status\n```\n") {
		t.Error("expected fence to be detected")
	}
	if HasCodeFence("# T\n\nJust prose with `inline code`.\n") {
		t.Error("inline code is not a fence")
	}
}

func TestHasChecklist(t *testing.T) {
	if !HasChecklist("## Steps\n\n- [ ] first\n- [ ] second\n") {
		t.Error("expected checklist to be detected")
	}
	if HasChecklist("## Steps\n\n- first\n- second\n") {
		t.Error("plain list is not a checklist")
	}
}
