// Package controller provides output adapters for displaying analysis
// results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "vel.dev/pkg/velc/internal/model"
)

// UI defines the interface for displaying check reports and source
// listings. Implementations can use different output methods (simple
// text, TUI, etc).
type UI interface {
	// DisplayReports renders per-file diagnostics and a summary.
	DisplayReports(ctx context.Context, reports []m.Report) error

	// DisplayUnitList renders discovered source files with their
	// declaration counts.
	DisplayUnitList(ctx context.Context, units []m.UnitSummary) error
}

// NewUI selects the right implementation for the output: interactive
// terminals get the TUI, everything else the simple printer.
func NewUI(cmd *cobra.Command, interactive bool) UI {
	if interactive {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
