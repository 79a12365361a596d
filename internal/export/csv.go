package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/pura-ai/call-tracker/internal/model"
)

const (
	filePrefix = "pura_calls_"
	dateLayout = "2006-01-02"
	// ISO-8601 in UTC with millisecond precision
	timestampLayout = "2006-01-02T15:04:05.000Z"
)

var CSVHeader = []string{
	"ID",
	"Patient Name",
	"Appointment ID",
	"Clinic",
	"Appointment Time",
	"Agent Name",
	"Status",
	"Comment",
	"Created At",
}

// FormatCSV renders calls in the given order. Text fields are quoted with
// inner quotes doubled; id, status and timestamp are written bare. Rows are
// joined by "\n" without a trailing newline.
func FormatCSV(calls []*model.Call, generatedAt time.Time) (content string, fileName string) {
	lines := make([]string, 0, len(calls)+1)
	lines = append(lines, strings.Join(CSVHeader, ","))

	for _, c := range calls {
		row := []string{
			strconv.FormatInt(c.ID, 10),
			quote(c.PatientName),
			quote(c.AppointmentID),
			quote(c.Clinic),
			quote(c.AppointmentTime),
			quote(c.AgentName),
			string(c.Status),
			quote(c.CommentText()),
			formatTimestamp(c.CreatedAt),
		}
		lines = append(lines, strings.Join(row, ","))
	}

	return strings.Join(lines, "\n"), FileName(generatedAt, "csv")
}

// FileName is pura_calls_<YYYY-MM-DD>.<ext> for the UTC generation date.
func FileName(generatedAt time.Time, ext string) string {
	return filePrefix + generatedAt.UTC().Format(dateLayout) + "." + ext
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
