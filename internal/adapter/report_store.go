package adapter

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "vel.dev/pkg/velc/internal/model"
)

// reportFileName is the single report file written under the reports
// directory.
const reportFileName = "velc-report.yaml"

// ReportStore persists check reports so they can be re-viewed without
// re-running the analysis.
type ReportStore interface {
	SaveReports(dir m.Path, reports []m.Report) error
	LoadReports(dir m.Path) ([]m.Report, error)
}

// storedReport is the on-disk shape of one unit's report. Paths and
// hashes are kept so a future run can detect stale entries.
type storedReport struct {
	Path        string             `yaml:"path"`
	Hash        string             `yaml:"hash"`
	Diagnostics []storedDiagnostic `yaml:"diagnostics"`
}

type storedDiagnostic struct {
	Code               string `yaml:"code"`
	Message            string `yaml:"message"`
	Line               int    `yaml:"line"`
	Column             int    `yaml:"column"`
	Subject            string `yaml:"subject,omitempty"`
	Help               string `yaml:"help,omitempty"`
	DeclName           string `yaml:"decl_name,omitempty"`
	DeclLine           int    `yaml:"decl_line,omitempty"`
	DeclColumn         int    `yaml:"decl_column,omitempty"`
	MayBeUninitialized bool   `yaml:"may_be_uninitialized"`
}

// LocalReportStore stores reports as YAML under a directory.
type LocalReportStore struct{}

// NewLocalReportStore constructs a LocalReportStore.
func NewLocalReportStore() *LocalReportStore {
	return &LocalReportStore{}
}

// SaveReports writes all reports to dir, creating it if needed.
func (s *LocalReportStore) SaveReports(dir m.Path, reports []m.Report) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}

	stored := make([]storedReport, 0, len(reports))
	for _, report := range reports {
		stored = append(stored, toStored(report))
	}

	content, err := yaml.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}

	target := filepath.Join(string(dir), reportFileName)

	if err := os.WriteFile(target, content, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	return nil
}

// LoadReports reads previously saved reports from dir.
func (s *LocalReportStore) LoadReports(dir m.Path) ([]m.Report, error) {
	target := filepath.Join(string(dir), reportFileName)

	content, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}

	var stored []storedReport

	if err := yaml.Unmarshal(content, &stored); err != nil {
		return nil, fmt.Errorf("decode %s: %w", target, err)
	}

	reports := make([]m.Report, 0, len(stored))
	for _, entry := range stored {
		reports = append(reports, fromStored(entry))
	}

	return reports, nil
}

func toStored(report m.Report) storedReport {
	entry := storedReport{}

	if report.Source.Origin != nil {
		entry.Path = string(report.Source.Origin.ShortPath)
		entry.Hash = report.Source.Origin.Hash
	}

	for _, d := range report.Diagnostics {
		sd := storedDiagnostic{
			Code:               string(d.Code),
			Message:            d.Message,
			Line:               d.Line,
			Column:             d.Column,
			Subject:            d.Subject,
			Help:               d.Help,
			MayBeUninitialized: d.MayBeUninitialized,
		}

		if d.Decl != nil {
			sd.DeclName = d.Decl.Name
			sd.DeclLine = d.Decl.Line
			sd.DeclColumn = d.Decl.Column
		}

		entry.Diagnostics = append(entry.Diagnostics, sd)
	}

	return entry
}

func fromStored(entry storedReport) m.Report {
	report := m.Report{Source: m.Source{Origin: &m.File{
		ShortPath: m.Path(entry.Path),
		Hash:      entry.Hash,
	}}}

	for _, sd := range entry.Diagnostics {
		d := m.Diagnostic{
			Code:               m.Code(sd.Code),
			Message:            sd.Message,
			Line:               sd.Line,
			Column:             sd.Column,
			Subject:            sd.Subject,
			Help:               sd.Help,
			MayBeUninitialized: sd.MayBeUninitialized,
		}

		if sd.DeclName != "" {
			d.Decl = &m.DeclSite{Name: sd.DeclName, Line: sd.DeclLine, Column: sd.DeclColumn}
		}

		report.Diagnostics = append(report.Diagnostics, d)
	}

	return report
}
