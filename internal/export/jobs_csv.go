// Package export renders tenant data as CSV and XLSX and reads client import sheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"fieldpilot/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

var jobColumns = []string{
	"Title",
	"Status",
	"Priority",
	"Client",
	"Assigned Operators",
	"Estimated Start",
	"Estimated End",
	"Actual Completion",
	"Proposal Generated",
	"Needs Assignment",
	"Overdue",
	"Created At",
	"Last Updated",
}

// Names resolves IDs to display names for export rows. Missing IDs render as the raw ID.
type Names map[uuid.UUID]string

func (n Names) of(id uuid.UUID) string {
	if name, ok := n[id]; ok && name != "" {
		return name
	}
	return id.String()
}

// JobWriter wraps csv.Writer for exporting jobs.
type JobWriter struct {
	csv *csv.Writer
	now time.Time
}

// NewJobWriter creates a JobWriter that writes CSV to w.
func NewJobWriter(w io.Writer) *JobWriter {
	return &JobWriter{csv: csv.NewWriter(w), now: time.Now()}
}

// WriteHeader writes the header row.
func (w *JobWriter) WriteHeader() error {
	return w.csv.Write(jobColumns)
}

// WriteJobs converts jobs to rows, resolving client and operator names.
func (w *JobWriter) WriteJobs(jobs []domain.Job, clients, operators Names) error {
	for i := range jobs {
		if err := w.csv.Write(jobToRow(&jobs[i], clients, operators, w.now)); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *JobWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *JobWriter) Error() error {
	return w.csv.Error()
}

func jobToRow(j *domain.Job, clients, operators Names, now time.Time) []string {
	ops := make([]string, 0, len(j.AssignedOperators))
	for _, id := range j.AssignedOperators {
		ops = append(ops, operators.of(id))
	}
	return []string{
		j.Title,
		domain.JobFlow.Meta(j.Status).Label,
		string(j.Priority),
		clients.of(j.ClientID),
		strings.Join(ops, "; "),
		formatTime(j.EstimatedStart),
		formatTime(j.EstimatedEnd),
		formatTime(j.ActualCompletion),
		formatBool(j.ProposalGenerated),
		formatBool(j.NeedsAssignment()),
		formatBool(j.IsOverdue(now)),
		j.CreatedAt.Format(time.RFC3339),
		j.LastUpdated.Format(time.RFC3339),
	}
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {sanitized_name}_{YYYY-MM-DD}.{ext}.
func BuildFilename(name, ext string) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), time.Now().Format("2006-01-02"), ext)
}
