package quickopen

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"tableflip.dev/docura/pkg/markdown"
)

const (
	// Limit caps how many results a search returns.
	Limit = 15

	scoreNameContains = 100
	scoreNamePrefix   = 50
	scoreHeading      = 75
	scorePath         = 10
	scoreBodyLine     = 5

	snippetContext = 30
)

// ContentReader fetches file contents for body and heading matching. A
// read failure degrades that item to name/path scoring only.
type ContentReader interface {
	ReadFile(path string) (string, error)
}

// Searcher ranks index items against a query.
type Searcher struct {
	Reader ContentReader
}

// Search scores every item against query and returns at most Limit
// results, best first. An empty query returns the head of the index in
// encounter order. Content for all candidates is fetched concurrently.
func (s *Searcher) Search(ctx context.Context, index []*Item, query string) []*Item {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]*Item, 0, Limit)
		for _, it := range index {
			out = append(out, resetItem(it))
			if len(out) == Limit {
				break
			}
		}
		return out
	}

	q := strings.ToLower(query)
	scored := make([]*Item, len(index))
	for i, it := range index {
		scored[i] = resetItem(it)
	}

	var wg sync.WaitGroup
	for _, it := range scored {
		scoreNameAndPath(it, q)
		if s.Reader == nil || ctx.Err() != nil {
			continue
		}
		wg.Add(1)
		go func(it *Item) {
			defer wg.Done()
			content, err := s.Reader.ReadFile(it.Path)
			if err != nil {
				return
			}
			scanContent(it, content, q)
		}(it)
	}
	wg.Wait()

	out := make([]*Item, 0, len(scored))
	for _, it := range scored {
		if it.Score > 0 {
			out = append(out, it)
		}
	}

	sortResults(out, q)
	if len(out) > Limit {
		out = out[:Limit]
	}
	return out
}

func resetItem(it *Item) *Item {
	c := *it
	c.Score = 0
	c.Match = MatchNone
	c.Headings = nil
	c.Body = nil
	return &c
}

func scoreNameAndPath(it *Item, q string) {
	name := strings.ToLower(it.Name)
	if strings.Contains(name, q) {
		it.Score += scoreNameContains
		if strings.HasPrefix(name, q) {
			it.Score += scoreNamePrefix
		}
		upgrade(it, MatchFilename)
	}
	if strings.Contains(strings.ToLower(it.DisplayPath), q) {
		it.Score += scorePath
		upgrade(it, MatchPath)
	}
}

// scanContent matches the query against the document outline and body.
// A hit on any heading is worth a single heading bonus; every non-blank
// matching body line adds a small bonus per line.
func scanContent(it *Item, content, q string) {
	headingLines := make(map[int]struct{})
	for _, h := range markdown.Outline(content) {
		headingLines[h.Line] = struct{}{}
		if !strings.Contains(strings.ToLower(h.Text), q) {
			continue
		}
		if len(it.Headings) == 0 {
			it.Score += scoreHeading
			upgrade(it, MatchHeadings)
		}
		it.Headings = append(it.Headings, Snippet{Line: h.Line, Text: clip(h.Text, strings.ToLower(h.Text), q)})
	}

	for n, line := range strings.Split(content, "\n") {
		if _, isHeading := headingLines[n+1]; isHeading {
			continue
		}
		lower := strings.ToLower(line)
		if !strings.Contains(lower, q) || strings.TrimSpace(line) == "" {
			continue
		}
		it.Score += scoreBodyLine
		upgrade(it, MatchContent)
		it.Body = append(it.Body, Snippet{Line: n + 1, Text: clip(line, lower, q)})
	}
}

// clip trims a matched line to a window of context around the first
// occurrence of the query, marking truncation with an ellipsis.
func clip(line, lower, q string) string {
	idx := strings.Index(lower, q)
	if idx < 0 {
		return line
	}
	start := idx - snippetContext
	if start < 0 {
		start = 0
	}
	end := idx + len(q) + snippetContext
	if end > len(line) {
		end = len(line)
	}
	for start > 0 && !utf8.RuneStart(line[start]) {
		start--
	}
	for end < len(line) && !utf8.RuneStart(line[end]) {
		end++
	}
	out := line[start:end]
	if start > 0 {
		out = "…" + out
	}
	if end < len(line) {
		out += "…"
	}
	return out
}

func upgrade(it *Item, k MatchKind) {
	if k > it.Match {
		it.Match = k
	}
}

func sortResults(items []*Item, q string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Match != b.Match {
			return a.Match > b.Match
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Match == MatchFilename && b.Match == MatchFilename {
			ae, be := exactName(a.Name, q), exactName(b.Name, q)
			if ae != be {
				return ae
			}
			ap := strings.HasPrefix(strings.ToLower(a.Name), q)
			bp := strings.HasPrefix(strings.ToLower(b.Name), q)
			if ap != bp {
				return ap
			}
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

// exactName reports whether name is the query itself or the query plus
// a markdown extension.
func exactName(name, q string) bool {
	n := strings.ToLower(name)
	if n == q {
		return true
	}
	for _, ext := range markdown.Extensions {
		if n == q+ext {
			return true
		}
	}
	return false
}
