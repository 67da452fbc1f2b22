// Package quickopen builds the searchable file index behind the
// quick-open dialog and ranks candidates for a query across filename,
// path, headings, and body text.
package quickopen

import (
	"tableflip.dev/docura/pkg/files"
	"tableflip.dev/docura/pkg/markdown"
	"tableflip.dev/docura/pkg/store"
)

// Source tags where an index item came from.
type Source string

const (
	SourceFolder Source = "folder"
	SourceRecent Source = "recent"
)

// MatchKind is the ranking bucket for a hit. Higher kinds sort before
// higher scores.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchPath
	MatchContent
	MatchHeadings
	MatchFilename
)

// String renders the badge text shown next to a result.
func (k MatchKind) String() string {
	switch k {
	case MatchPath:
		return "path"
	case MatchContent:
		return "content"
	case MatchHeadings:
		return "headings"
	case MatchFilename:
		return "filename"
	default:
		return ""
	}
}

// Snippet is a preview line kept for rendering a match.
type Snippet struct {
	Line int
	Text string
}

// Item is one quick-open candidate, annotated with ranking data after a
// search. Items are rebuilt per query and never persisted.
type Item struct {
	Name        string
	Path        string
	Type        files.ItemType
	Source      Source
	DisplayPath string

	Score    int
	Match    MatchKind
	Headings []Snippet
	Body     []Snippet
}

// Preview returns the first available snippet, headings first.
func (i *Item) Preview() (Snippet, bool) {
	if len(i.Headings) > 0 {
		return i.Headings[0], true
	}
	if len(i.Body) > 0 {
		return i.Body[0], true
	}
	return Snippet{}, false
}

// BuildIndex flattens the folder tree depth-first into markdown file
// items and merges in recent markdown files not already present,
// deduping by path.
func BuildIndex(tree []files.Item, recent []store.RecentItem) []*Item {
	items := make([]*Item, 0, 64)
	seen := make(map[string]struct{})

	var walk func(nodes []files.Item, prefix string)
	walk = func(nodes []files.Item, prefix string) {
		for _, node := range nodes {
			switch node.Type {
			case files.TypeFile:
				if !markdown.IsMarkdownFile(node.Name) {
					continue
				}
				display := node.Name
				if prefix != "" {
					display = prefix + "/" + node.Name
				}
				items = append(items, &Item{
					Name:        node.Name,
					Path:        node.Path,
					Type:        files.TypeFile,
					Source:      SourceFolder,
					DisplayPath: display,
				})
				seen[node.Path] = struct{}{}
			case files.TypeFolder:
				childPrefix := node.Name
				if prefix != "" {
					childPrefix = prefix + "/" + node.Name
				}
				walk(node.Children, childPrefix)
			}
		}
	}
	walk(tree, "")

	for _, r := range recent {
		if r.Type != "file" || !markdown.IsMarkdownFile(r.Name) {
			continue
		}
		if _, dup := seen[r.Path]; dup {
			continue
		}
		seen[r.Path] = struct{}{}
		items = append(items, &Item{
			Name:        r.Name,
			Path:        r.Path,
			Type:        files.TypeFile,
			Source:      SourceRecent,
			DisplayPath: r.Path,
		})
	}

	return items
}
