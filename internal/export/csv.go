package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/petquest/internal/store"
)

// ToCSV writes the focus-session log, one row per session.
func ToCSV(sessions []store.FocusSession, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Subject", "Start", "End", "Duration (s)", "Duration", "Focus Score", "Breaks"}); err != nil {
		return err
	}

	for _, s := range sessions {
		subject := ""
		if s.Subject != nil {
			subject = *s.Subject
		}
		endStr := ""
		if !s.EndTime.IsZero() {
			endStr = s.EndTime.Local().Format(time.RFC3339)
		}
		score := ""
		if s.FocusScore != nil {
			score = strconv.FormatFloat(*s.FocusScore, 'f', 2, 64)
		}
		breaks := ""
		if s.Breaks != nil {
			breaks = strconv.Itoa(*s.Breaks)
		}

		row := []string{
			s.ID,
			subject,
			s.StartTime.Local().Format(time.RFC3339),
			endStr,
			strconv.FormatInt(s.Duration, 10),
			formatDuration(s.Duration),
			score,
			breaks,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
