package theme

import (
	"github.com/charmbracelet/lipgloss/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Theme centralizes Lip Gloss styles for the editor UI.
type Theme struct {
	Name string

	Editor    EditorTheme
	Tree      TreeTheme
	StatusBar StatusBarTheme
	Dialog    DialogTheme
	QuickOpen QuickOpenTheme
}

// EditorTheme styles the main editing pane.
type EditorTheme struct {
	Frame      lipgloss.Style
	FrameFocus lipgloss.Style
	Heading    lipgloss.Style
}

// TreeTheme styles the file tree sidebar.
type TreeTheme struct {
	Frame    lipgloss.Style
	Folder   lipgloss.Style
	File     lipgloss.Style
	Selected lipgloss.Style
}

// StatusBarTheme styles the bottom bar with the document name, dirty
// marker, and transient toasts.
type StatusBarTheme struct {
	Base    lipgloss.Style
	Name    lipgloss.Style
	Dirty   lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

// DialogTheme styles centered modal dialogs (confirm, recovery).
type DialogTheme struct {
	Frame    lipgloss.Style
	Title    lipgloss.Style
	Body     lipgloss.Style
	Button   lipgloss.Style
	Selected lipgloss.Style
}

// QuickOpenTheme styles the quick-open search dialog.
type QuickOpenTheme struct {
	Frame    lipgloss.Style
	Input    lipgloss.Style
	Name     lipgloss.Style
	Path     lipgloss.Style
	Badge    lipgloss.Style
	Snippet  lipgloss.Style
	Selected lipgloss.Style
}

// palette is the small set of anchor colors a theme derives from.
type palette struct {
	accent  colorful.Color
	text    colorful.Color
	muted   colorful.Color
	danger  colorful.Color
	success colorful.Color
}

func hex(s string) colorful.Color {
	c, _ := colorful.Hex(s)
	return c
}

func darkPalette() palette {
	return palette{
		accent:  hex("#ff87d7"),
		text:    hex("#d0d0d0"),
		muted:   hex("#808080"),
		danger:  hex("#ff5f5f"),
		success: hex("#5fd787"),
	}
}

func lightPalette() palette {
	return palette{
		accent:  hex("#af00af"),
		text:    hex("#303030"),
		muted:   hex("#6c6c6c"),
		danger:  hex("#d70000"),
		success: hex("#008700"),
	}
}

// Load returns the named theme, falling back to dark for anything it
// does not recognize.
func Load(name string) Theme {
	switch name {
	case "light":
		return build("light", lightPalette())
	default:
		return build("dark", darkPalette())
	}
}

func build(name string, p palette) Theme {
	accent := lipgloss.Color(p.accent.Hex())
	text := lipgloss.Color(p.text.Hex())
	muted := lipgloss.Color(p.muted.Hex())
	danger := lipgloss.Color(p.danger.Hex())
	success := lipgloss.Color(p.success.Hex())

	// Blend toward the accent for the selected-row background so both
	// palettes keep readable contrast.
	selectedBG := lipgloss.Color(p.accent.BlendLab(p.text, 0.7).Hex())

	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Padding(0, 1)

	return Theme{
		Name: name,
		Editor: EditorTheme{
			Frame:      frame,
			FrameFocus: frame.BorderForeground(accent),
			Heading:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		},
		Tree: TreeTheme{
			Frame:    frame,
			Folder:   lipgloss.NewStyle().Bold(true).Foreground(text),
			File:     lipgloss.NewStyle().Foreground(text),
			Selected: lipgloss.NewStyle().Foreground(accent).Reverse(true),
		},
		StatusBar: StatusBarTheme{
			Base:    lipgloss.NewStyle().Foreground(muted),
			Name:    lipgloss.NewStyle().Bold(true).Foreground(text),
			Dirty:   lipgloss.NewStyle().Bold(true).Foreground(accent),
			Info:    lipgloss.NewStyle().Foreground(muted).Italic(true),
			Success: lipgloss.NewStyle().Foreground(success),
			Error:   lipgloss.NewStyle().Bold(true).Foreground(danger),
		},
		Dialog: DialogTheme{
			Frame:    lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(accent).Padding(1, 2),
			Title:    lipgloss.NewStyle().Bold(true).Foreground(text),
			Body:     lipgloss.NewStyle().Foreground(text),
			Button:   lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
			Selected: lipgloss.NewStyle().Foreground(selectedBG).Reverse(true).Padding(0, 1),
		},
		QuickOpen: QuickOpenTheme{
			Frame:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
			Input:    lipgloss.NewStyle().Foreground(text),
			Name:     lipgloss.NewStyle().Bold(true).Foreground(text),
			Path:     lipgloss.NewStyle().Foreground(muted),
			Badge:    lipgloss.NewStyle().Foreground(accent).Italic(true),
			Snippet:  lipgloss.NewStyle().Foreground(muted).Italic(true),
			Selected: lipgloss.NewStyle().Foreground(accent).Reverse(true),
		},
	}
}
