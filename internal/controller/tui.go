package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "vel.dev/pkg/velc/internal/model"
)

var (
	tuiTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tuiPathStyle  = lipgloss.NewStyle().Bold(true)
	tuiErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	tuiCodeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	tuiHelpStyle  = lipgloss.NewStyle().Faint(true)
	tuiFrameStyle = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// DisplayReports renders the diagnostics in a scrollable viewport when
// they do not fit on one screen, and prints them directly otherwise.
func (t *TUI) DisplayReports(ctx context.Context, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	content := renderReportsContent(reports)

	width, height := t.terminalSize()

	if height == 0 || strings.Count(content, "\n")+2 < height {
		_, err := fmt.Fprint(t.output, content)
		return err
	}

	model := newDiagnosticsModel(content, width, height)

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

// DisplayUnitList has no interactive affordances; it prints plainly.
func (t *TUI) DisplayUnitList(ctx context.Context, units []m.UnitSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, unit := range units {
		_, err := fmt.Fprintf(
			t.output, "%s\t%d function(s), %d struct(s), %d global(s)\n",
			tuiPathStyle.Render(string(unit.Path)), unit.Functions, unit.Structs, unit.Globals,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (t *TUI) terminalSize() (int, int) {
	f, ok := t.output.(*os.File)
	if !ok {
		return 0, 0
	}

	width, height, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0
	}

	return width, height
}

func renderReportsContent(reports []m.Report) string {
	var b strings.Builder

	total := 0

	for _, report := range reports {
		path := ""
		if report.Source.Origin != nil {
			path = string(report.Source.Origin.ShortPath)
		}

		if len(report.Diagnostics) == 0 {
			continue
		}

		b.WriteString(tuiPathStyle.Render(path))
		b.WriteString("\n")

		for _, d := range report.Diagnostics {
			total++

			b.WriteString("  ")
			b.WriteString(tuiErrorStyle.Render("error"))
			b.WriteString(tuiCodeStyle.Render(fmtCode(d.Code)))
			b.WriteString(fmt.Sprintf(" %d:%d: %s\n", d.Line, d.Column, d.Message))

			if d.Help != "" {
				b.WriteString(tuiHelpStyle.Render("    help: " + d.Help))
				b.WriteString("\n")
			}
		}

		b.WriteString("\n")
	}

	if total == 0 {
		b.WriteString(tuiTitleStyle.Render("velc"))
		b.WriteString(fmt.Sprintf(": no problems found in %d file(s)\n", len(reports)))
	} else {
		b.WriteString(fmt.Sprintf("%d problem(s) in %d file(s)\n", total, len(reports)))
	}

	return b.String()
}

func fmtCode(code m.Code) string {
	return "[" + string(code) + "]"
}

// diagnosticsModel is the Bubble Tea model wrapping the report text in
// a viewport.
type diagnosticsModel struct {
	viewport viewport.Model
	quitting bool
}

func newDiagnosticsModel(content string, width, height int) diagnosticsModel {
	vp := viewport.New(width, height-1)
	vp.SetContent(content)

	return diagnosticsModel{viewport: vp}
}

func (dm diagnosticsModel) Init() tea.Cmd {
	return nil
}

func (dm diagnosticsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			dm.quitting = true
			return dm, tea.Quit
		}
	case tea.WindowSizeMsg:
		dm.viewport.Width = msg.Width
		dm.viewport.Height = msg.Height - 1
	}

	var cmd tea.Cmd

	dm.viewport, cmd = dm.viewport.Update(msg)

	return dm, cmd
}

func (dm diagnosticsModel) View() string {
	if dm.quitting {
		return ""
	}

	footer := tuiFrameStyle.Render("↑/↓ scroll · q quit")

	return dm.viewport.View() + "\n" + footer
}
