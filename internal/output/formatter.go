// Package output renders aggregated reports.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/osci-stats/internal/domain"
)

// Format is an output format name.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Formatter writes a report to w.
type Formatter interface {
	Format(report domain.Report, w io.Writer) error
}

// NewFormatter returns the formatter for f, defaulting to text.
func NewFormatter(f Format) Formatter {
	if f == FormatJSON {
		return &JSONFormatter{}
	}
	return &TextFormatter{}
}

// RepoStats is one repository row of a rendered report.
type RepoStats struct {
	Name string `json:"name"`
	domain.Counts
}

// Summary describes the report as a whole.
type Summary struct {
	ActiveRepositories int     `json:"active_repositories"`
	PRsOpened          int     `json:"prs_opened"`
	PRsMerged          int     `json:"prs_merged"`
	IssuesOpened       int     `json:"issues_opened"`
	MeanPRsOpened      float64 `json:"mean_prs_opened"`
	MedianPRsOpened    float64 `json:"median_prs_opened"`
}

// Rows returns the report sorted by repository name for consistent output.
func Rows(report domain.Report) []RepoStats {
	rows := make([]RepoStats, 0, len(report))
	for name, counts := range report {
		rows = append(rows, RepoStats{Name: name, Counts: counts})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// Summarize computes totals and per-repository PR statistics.
func Summarize(report domain.Report) Summary {
	s := Summary{ActiveRepositories: len(report)}
	prs := make(stats.Float64Data, 0, len(report))
	for _, c := range report {
		s.PRsOpened += c.PRsOpened
		s.PRsMerged += c.PRsMerged
		s.IssuesOpened += c.IssuesOpened
		prs = append(prs, float64(c.PRsOpened))
	}
	if len(prs) == 0 {
		return s
	}
	// Errors only occur on empty input, which is handled above.
	s.MeanPRsOpened, _ = stats.Mean(prs)
	s.MedianPRsOpened, _ = stats.Median(prs)
	return s
}

// TextFormatter prints one block of lines per repository.
type TextFormatter struct{}

// Format writes the report as human-readable text.
func (f *TextFormatter) Format(report domain.Report, w io.Writer) error {
	if len(report) == 0 {
		_, err := fmt.Fprintln(w, "No activity found for the tracked contributors.")
		return err
	}

	for _, row := range Rows(report) {
		if _, err := fmt.Fprintf(w,
			"Repository: %s\nTotal PRs opened by contributors: %d\nTotal PRs merged by contributors: %d\nTotal Issues opened by contributors: %d\n-----------------------\n",
			row.Name, row.PRsOpened, row.PRsMerged, row.IssuesOpened); err != nil {
			return err
		}
	}

	s := Summarize(report)
	_, err := fmt.Fprintf(w,
		"Repositories with activity: %d\nTotal PRs opened: %d (merged: %d)\nTotal Issues opened: %d\nPRs opened per repository: mean %.2f, median %.2f\n",
		s.ActiveRepositories, s.PRsOpened, s.PRsMerged, s.IssuesOpened, s.MeanPRsOpened, s.MedianPRsOpened)
	return err
}

// JSONFormatter prints the report as an indented JSON document.
type JSONFormatter struct{}

type jsonReport struct {
	Repositories []RepoStats `json:"repositories"`
	Summary      Summary     `json:"summary"`
}

// Format writes the report as JSON.
func (f *JSONFormatter) Format(report domain.Report, w io.Writer) error {
	jsonData, err := json.MarshalIndent(jsonReport{
		Repositories: Rows(report),
		Summary:      Summarize(report),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}
