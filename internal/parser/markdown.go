package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading represents a parsed markdown heading.
type Heading struct {
	Level int
	Text  string
	Line  int // 1-indexed
}

// ExtractHeadings extracts headings from markdown content using goldmark.
// startLine is the 1-indexed line number of the first content line, so
// callers can offset past front-matter.
func ExtractHeadings(content string, startLine int) []Heading {
	var headings []Heading

	md := goldmark.New()
	reader := text.NewReader([]byte(content))
	doc := md.Parser().Parse(reader)

	lineStarts := computeLineStarts(content)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		headingText := strings.TrimSpace(nodeText(heading, []byte(content)))
		if headingText == "" {
			return ast.WalkContinue, nil
		}

		line := startLine
		if heading.Lines().Len() > 0 {
			offset := heading.Lines().At(0).Start
			line = startLine + offsetToLine(lineStarts, offset)
		}

		headings = append(headings, Heading{
			Level: heading.Level,
			Text:  headingText,
			Line:  line,
		})

		return ast.WalkContinue, nil
	})

	return headings
}

// HasCodeFence reports whether the content contains a fenced code block.
func HasCodeFence(content string) bool {
	md := goldmark.New()
	reader := text.NewReader([]byte(content))
	doc := md.Parser().Parse(reader)

	found := false
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, ok := n.(*ast.FencedCodeBlock); ok {
			found = true
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	return found
}

var checklistPattern = regexp.MustCompile(`\[\s*\]`)

// HasChecklist reports whether the content contains checklist syntax ([ ]).
func HasChecklist(content string) bool {
	return checklistPattern.MatchString(content)
}

// nodeText collects the text content of a node's direct text children.
func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if textNode, ok := child.(*ast.Text); ok {
			sb.Write(textNode.Segment.Value(source))
		}
	}
	return sb.String()
}

// computeLineStarts returns the byte offset of each line start.
func computeLineStarts(content string) []int {
	starts := []int{0}
	for i, c := range content {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// offsetToLine converts a byte offset to a 0-indexed line number.
func offsetToLine(lineStarts []int, offset int) int {
	idx := sort.Search(len(lineStarts), func(i int) bool {
		return lineStarts[i] > offset
	})
	return idx - 1
}
