package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"vel.dev/pkg/velc/internal/adapter"
	"vel.dev/pkg/velc/internal/ast"
	"vel.dev/pkg/velc/internal/controller"
	"vel.dev/pkg/velc/internal/model"
	"vel.dev/pkg/velc/internal/registry"
)

// ErrChecksFailed is returned by Check when any diagnostic was
// produced. The pipeline never reaches code generation in that case.
var ErrChecksFailed = errors.New("semantic checks failed")

// CheckArgs configures a Check run.
type CheckArgs struct {
	Paths   []model.Path
	Exclude []string
	Interop model.Path // optional interop struct-fields file
	Reports model.Path // report output directory, empty to skip saving
	Threads int
}

// ListArgs configures a List run.
type ListArgs struct {
	Paths   []model.Path
	Exclude []string
}

// ViewArgs configures a View run.
type ViewArgs struct {
	Reports model.Path
}

// Workflow is the high-level use-case layer behind the CLI commands.
type Workflow interface {
	Check(ctx context.Context, args CheckArgs) error
	List(ctx context.Context, args ListArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	fs      adapter.SourceFSAdapter
	units   adapter.UnitAdapter
	interop adapter.InteropAdapter
	store   adapter.ReportStore
	ui      controller.UI
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	fs adapter.SourceFSAdapter,
	units adapter.UnitAdapter,
	interop adapter.InteropAdapter,
	store adapter.ReportStore,
	ui controller.UI,
) Workflow {
	return &workflow{fs: fs, units: units, interop: interop, store: store, ui: ui}
}

// CheckUnit runs both checkers over one compilation unit.
// Initialization diagnostics come first; within each checker the
// order is source-encounter order. The two analyses are independent,
// so the ordering only decides which errors surface first.
func CheckUnit(prog *ast.Program, reg *registry.StructRegistry) []model.Diagnostic {
	diags := NewInitChecker(reg).Check(prog)

	return append(diags, NewNullChecker().Check(prog)...)
}

// Check analyzes every discovered source file and reports the
// findings. Files are checked in parallel; the report order always
// follows discovery order.
func (w *workflow) Check(ctx context.Context, args CheckArgs) error {
	sources, err := w.fs.Collect(ctx, args.Paths, args.Exclude)
	if err != nil {
		slog.Error("failed to collect sources", "error", err)
		return fmt.Errorf("collect sources: %w", err)
	}

	external, err := w.loadInterop(args.Interop)
	if err != nil {
		return err
	}

	threads := args.Threads
	if threads < 1 {
		threads = 1
	}

	reports := make([]model.Report, len(sources))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	for i, source := range sources {
		i, source := i, source
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			report, err := w.checkSource(source, external)
			if err != nil {
				return err
			}

			reports[i] = report

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		slog.Error("check run aborted", "error", err)
		return err
	}

	if err := w.ui.DisplayReports(ctx, reports); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	if args.Reports != "" {
		if err := w.store.SaveReports(args.Reports, reports); err != nil {
			slog.Error("failed to save reports", "path", args.Reports, "error", err)
			return fmt.Errorf("save reports: %w", err)
		}
	}

	total := 0
	for _, report := range reports {
		total += len(report.Diagnostics)
	}

	slog.Info("check finished", "files", len(sources), "diagnostics", total)

	if total > 0 {
		return fmt.Errorf("%w: %d problem(s) in %d file(s)", ErrChecksFailed, total, len(sources))
	}

	return nil
}

func (w *workflow) checkSource(source model.Source, external map[string][]string) (model.Report, error) {
	prog, err := w.units.Load(source)
	if err != nil {
		return model.Report{}, fmt.Errorf("parse %s: %w", source.Origin.ShortPath, err)
	}

	reg := registry.FromProgram(prog)
	reg.RegisterExternalFields(external)

	diags := CheckUnit(prog, reg)
	slog.Debug("checked unit", "path", source.Origin.ShortPath, "diagnostics", len(diags))

	return model.Report{Source: source, Diagnostics: diags}, nil
}

func (w *workflow) loadInterop(path model.Path) (map[string][]string, error) {
	if path == "" {
		return nil, nil
	}

	mapping, err := w.interop.LoadFields(path)
	if err != nil {
		slog.Error("failed to load interop fields", "path", path, "error", err)
		return nil, fmt.Errorf("load interop fields: %w", err)
	}

	return mapping, nil
}

// List prints every discovered source file with its declaration
// counts, without running the checkers.
func (w *workflow) List(ctx context.Context, args ListArgs) error {
	sources, err := w.fs.Collect(ctx, args.Paths, args.Exclude)
	if err != nil {
		return fmt.Errorf("collect sources: %w", err)
	}

	summaries := make([]model.UnitSummary, 0, len(sources))

	for _, source := range sources {
		prog, err := w.units.Load(source)
		if err != nil {
			return fmt.Errorf("parse %s: %w", source.Origin.ShortPath, err)
		}

		summaries = append(summaries, summarize(source, prog))
	}

	return w.ui.DisplayUnitList(ctx, summaries)
}

func summarize(source model.Source, prog *ast.Program) model.UnitSummary {
	summary := model.UnitSummary{Path: source.Origin.ShortPath}

	for _, decl := range prog.Decls {
		switch decl.(type) {
		case *ast.FuncDecl:
			summary.Functions++
		case *ast.StructDecl:
			summary.Structs++
		case *ast.VarDecl:
			summary.Globals++
		}
	}

	return summary
}

// View loads previously saved reports and hands them to the UI.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	reports, err := w.store.LoadReports(args.Reports)
	if err != nil {
		return fmt.Errorf("load reports: %w", err)
	}

	return w.ui.DisplayReports(ctx, reports)
}
