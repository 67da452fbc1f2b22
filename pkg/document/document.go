// Package document owns the lifecycle of the file being edited: the
// dirty flag, manual and debounced saves, crash-recovery snapshots for
// untitled documents, and the shared unsaved-changes gate every
// destructive action goes through.
package document

import "strings"

// Document is the in-memory representation of the buffer being edited.
// Identity is either Path (a saved file) or a temp snapshot session for
// untitled documents, never both.
type Document struct {
	Path            string
	Content         string
	OriginalContent string
	TempSnapshotID  string
}

// Dirty reports whether the buffer diverged from its persisted
// baseline. A brand-new empty document compared against an empty
// baseline is not dirty; any divergence once either side has had
// content counts.
func (d Document) Dirty() bool {
	if d.Content == d.OriginalContent {
		return false
	}
	return strings.TrimSpace(d.Content) != "" || d.OriginalContent != ""
}

// Untitled reports whether the document has no saved identity.
func (d Document) Untitled() bool {
	return d.Path == ""
}

// Name returns a display name for the document.
func (d Document) Name() string {
	if d.Path == "" {
		return "untitled.md"
	}
	if i := strings.LastIndexByte(d.Path, '/'); i >= 0 {
		return d.Path[i+1:]
	}
	return d.Path
}
