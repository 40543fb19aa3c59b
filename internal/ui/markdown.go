package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
)

// MarkdownRenderMargin is the left margin used for terminal markdown rendering.
const MarkdownRenderMargin = 2

// RenderMarkdown renders markdown content (generated reports, summaries) for
// terminal display using the shared pbk style configuration.
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = DefaultTermWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(pbkMarkdownStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return "", err
	}

	// glamour adds trailing newlines; normalize to a single trailing newline.
	rendered = strings.TrimRight(rendered, "\n") + "\n"
	return rendered, nil
}

func pbkMarkdownStyle() ansi.StyleConfig {
	muted := mdStringPtr("8")
	var accent *string
	if color, ok := AccentColor(); ok {
		accent = mdStringPtr(color)
	}

	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockPrefix: "\n",
				BlockSuffix: "\n",
			},
			Margin: mdUintPtr(MarkdownRenderMargin),
		},
		BlockQuote: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: muted,
			},
			Indent:      mdUintPtr(1),
			IndentToken: mdStringPtr("│ "),
		},
		List: ansi.StyleList{
			LevelIndent: 2,
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       accent,
				Bold:        mdBoolPtr(true),
			},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "# "},
		},
		H2: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "## "},
		},
		H3: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "### "},
		},
		Emph: ansi.StylePrimitive{
			Italic: mdBoolPtr(true),
		},
		Strong: ansi.StylePrimitive{
			Bold: mdBoolPtr(true),
		},
		HorizontalRule: ansi.StylePrimitive{
			Color:  muted,
			Format: "\n--------\n",
		},
		Item: ansi.StylePrimitive{
			BlockPrefix: "• ",
		},
		Enumeration: ansi.StylePrimitive{
			BlockPrefix: ". ",
		},
		Task: ansi.StyleTask{
			Ticked:   "[x] ",
			Unticked: "[ ] ",
		},
		Link: ansi.StylePrimitive{
			Color:     muted,
			Underline: mdBoolPtr(true),
		},
		LinkText: ansi.StylePrimitive{
			Color: muted,
			Bold:  mdBoolPtr(true),
		},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix: "`",
				Suffix: "`",
			},
		},
		Table: ansi.StyleTable{
			CenterSeparator: mdStringPtr("│"),
			ColumnSeparator: mdStringPtr("│"),
			RowSeparator:    mdStringPtr("─"),
		},
	}
}

func mdBoolPtr(v bool) *bool { return &v }

func mdStringPtr(v string) *string { return &v }

func mdUintPtr(v uint) *uint { return &v }
