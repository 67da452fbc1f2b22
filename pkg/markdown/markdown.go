// Package markdown holds the light parsing helpers the editor needs:
// extension checks, heading outlines, and checkbox toggling. Rendering
// markdown to anything richer is out of scope here.
package markdown

import (
	"regexp"
	"strings"
)

// Extensions lists the file extensions treated as markdown documents.
var Extensions = []string{".md", ".markdown", ".mdown", ".mkdn", ".mdx"}

var (
	headingPattern  = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	checkboxPattern = regexp.MustCompile(`^(\s*[-*+]\s+)\[([ xX])\](\s.*|)$`)
)

// IsMarkdownFile reports whether name carries a markdown extension.
func IsMarkdownFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Heading is one entry of a document outline.
type Heading struct {
	Level int
	Text  string
	Line  int // 1-based line number
}

// Outline extracts the heading structure from content.
func Outline(content string) []Heading {
	var headings []Heading
	for i, line := range strings.Split(content, "\n") {
		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		headings = append(headings, Heading{
			Level: len(m[1]),
			Text:  strings.TrimSpace(m[2]),
			Line:  i + 1,
		})
	}
	return headings
}

// IsHeading reports whether line is an ATX heading.
func IsHeading(line string) bool {
	return headingPattern.MatchString(line)
}

// ToggleCheckbox flips the task checkbox on the given 1-based line of
// content. It returns the updated content and whether a checkbox was
// found on that line.
func ToggleCheckbox(content string, line int) (string, bool) {
	lines := strings.Split(content, "\n")
	if line < 1 || line > len(lines) {
		return content, false
	}
	m := checkboxPattern.FindStringSubmatch(lines[line-1])
	if m == nil {
		return content, false
	}
	mark := "x"
	if m[2] == "x" || m[2] == "X" {
		mark = " "
	}
	lines[line-1] = m[1] + "[" + mark + "]" + m[3]
	return strings.Join(lines, "\n"), true
}
