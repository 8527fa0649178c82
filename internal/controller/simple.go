package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "vel.dev/pkg/velc/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayReports prints each diagnostic compiler-style, then a per-file
// summary table.
func (s *SimpleUI) DisplayReports(ctx context.Context, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	total := 0

	for _, report := range reports {
		path := ""
		if report.Source.Origin != nil {
			path = string(report.Source.Origin.ShortPath)
		}

		for _, d := range report.Diagnostics {
			total++

			s.printf("%s:%s\n", path, d.String())

			if d.Decl != nil {
				s.printf("  note: '%s' declared at %s:%d:%d\n", d.Decl.Name, path, d.Decl.Line, d.Decl.Column)
			}

			if d.Help != "" {
				s.printf("  help: %s\n", d.Help)
			}
		}
	}

	s.printf("\n%s", renderReportTable(reports, total))

	if total == 0 {
		s.printf("No problems found in %d file(s)\n", len(reports))
	}

	return nil
}

func renderReportTable(reports []m.Report, total int) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Diagnostics"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	sorted := make([]m.Report, len(reports))
	copy(sorted, reports)
	sort.Slice(sorted, func(i, j int) bool {
		return shortPath(sorted[i]) < shortPath(sorted[j])
	})

	for _, report := range sorted {
		table.Append([]string{shortPath(report), fmt.Sprintf("%d", len(report.Diagnostics))})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(reports)),
		fmt.Sprintf("%d", total),
	})

	table.Render()

	return tableBuffer.String()
}

func shortPath(report m.Report) string {
	if report.Source.Origin == nil {
		return ""
	}

	return string(report.Source.Origin.ShortPath)
}

// DisplayUnitList prints the discovered files and their declaration
// counts as a table.
func (s *SimpleUI) DisplayUnitList(ctx context.Context, units []m.UnitSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Functions", "Structs", "Globals"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
	})

	sorted := make([]m.UnitSummary, len(units))
	copy(sorted, units)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	totalFuncs, totalStructs, totalGlobals := 0, 0, 0

	for _, unit := range sorted {
		table.Append([]string{
			string(unit.Path),
			fmt.Sprintf("%d", unit.Functions),
			fmt.Sprintf("%d", unit.Structs),
			fmt.Sprintf("%d", unit.Globals),
		})

		totalFuncs += unit.Functions
		totalStructs += unit.Structs
		totalGlobals += unit.Globals
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(units)),
		fmt.Sprintf("%d", totalFuncs),
		fmt.Sprintf("%d", totalStructs),
		fmt.Sprintf("%d", totalGlobals),
	})

	table.Render()

	s.printf("\n%s", tableBuffer.String())

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
