package document

import (
	"math/rand"
	"strings"
	"testing"
)

func TestDirtyTable(t *testing.T) {
	cases := []struct {
		name     string
		content  string
		original string
		want     bool
	}{
		{"both empty", "", "", false},
		{"identical", "# a", "# a", false},
		{"diverged", "# a", "# b", true},
		{"new doc untouched whitespace", "   \n", "", false},
		{"new doc with content", "x", "", true},
		{"cleared saved doc", "", "# a", true},
		{"whitespace over baseline", " ", "# a", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Document{Content: tc.content, OriginalContent: tc.original}
			if got := d.Dirty(); got != tc.want {
				t.Errorf("Dirty(%q, %q) = %v, want %v", tc.content, tc.original, got, tc.want)
			}
		})
	}
}

// TestDirtyProperty checks the dirty formula over random string pairs:
// dirty iff the strings differ and not both sides are (effectively) empty.
func TestDirtyProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []string{"", "a", "b", " ", "\n", "# h", "text", "  text  "}
	randStr := func() string {
		n := rng.Intn(4)
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteString(alphabet[rng.Intn(len(alphabet))])
		}
		return b.String()
	}

	for i := 0; i < 2000; i++ {
		content, original := randStr(), randStr()
		d := Document{Content: content, OriginalContent: original}
		want := content != original && (strings.TrimSpace(content) != "" || original != "")
		if got := d.Dirty(); got != want {
			t.Fatalf("Dirty(%q, %q) = %v, want %v", content, original, got, want)
		}
	}
}

func TestName(t *testing.T) {
	if got := (Document{}).Name(); got != "untitled.md" {
		t.Errorf("untitled name = %q", got)
	}
	if got := (Document{Path: "/notes/todo.md"}).Name(); got != "todo.md" {
		t.Errorf("name = %q", got)
	}
}
