package printers

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"tableflip.dev/docura/pkg/store"
)

// PrettyPrint renders recent-file and snapshot listings for the CLI
// subcommands.
type PrettyPrint struct {
	ShowID bool
}

var spacing = strings.Repeat(" ", len("1724862273125000000  "))

func init() {
	// fatih/color guesses, but pipes and dumb terminals get plain text
	// explicitly.
	if !isatty.IsTerminal(os.Stdout.Fd()) || termenv.ColorProfile() == termenv.Ascii {
		color.NoColor = true
	}
}

func (pp *PrettyPrint) NewLine() {
	fmt.Println("")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)

	if pp.ShowID {
		_, _ = t.Print(spacing)
	}
	_, _ = t.Println(title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	if pp.ShowID {
		_, _ = t.Print(spacing)
	}
	_, _ = t.Print(title)
	_, _ = c.Printf(" - %d", count)

	switch count {
	case 1:
		_, _ = c.Println(" entry")
	default:
		_, _ = c.Println(" entries")
	}
}

// Recents renders the recently-opened list, newest first.
func (pp *PrettyPrint) Recents(items ...store.RecentItem) {
	if len(items) == 0 {
		pp.none()
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "

	name := color.New(color.Bold)
	faint := color.New(color.Faint)
	for _, it := range items {
		tbl.AddRow(
			name.Sprint(it.Name),
			it.Type,
			faint.Sprint(it.Path),
			faint.Sprint(it.OpenedAt.Local().Format(time.RFC822)),
		)
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
}

// Snapshots renders crash-recovery snapshots, newest first, with a
// short content preview.
func (pp *PrettyPrint) Snapshots(snaps ...*store.Snapshot) {
	if len(snaps) == 0 {
		pp.none()
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "

	id := color.New(color.FgHiYellow, color.Italic, color.Faint)
	faint := color.New(color.Faint)
	for _, s := range snaps {
		row := []interface{}{
			faint.Sprint(s.CreatedAt.Local().Format(time.RFC822)),
			preview(s.Content),
		}
		if pp.ShowID {
			row = append([]interface{}{id.Sprint(s.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	if pp.ShowID {
		_, _ = f.Print(spacing)
	}
	_, _ = f.Print(" none\n\n")
}

func preview(content string) string {
	line := content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if len(line) > 60 {
		line = line[:60] + "…"
	}
	if line == "" {
		line = "(empty)"
	}
	return line
}
