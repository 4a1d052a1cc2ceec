package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/benvon/flow/internal/models"
	"github.com/benvon/flow/internal/tracker"
)

func printTimerState(w io.Writer, s models.TimerState) {
	if !s.IsTracking {
		fmt.Fprintln(w, "Not tracking")
		return
	}
	fmt.Fprintf(w, "Tracking %s (started %s)\n", tracker.FormatSeconds(s.CurrentTimeSeconds), s.StartedAt)
}

func printRecords(w io.Writer, records []models.TimeRecord, now time.Time) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No time records")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTART\tEND\tDURATION\tTAGS")
	for _, rec := range records {
		end := rec.EndTime
		if rec.IsActive() {
			end = &now
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			rec.ID,
			tracker.DisplayDateTime(rec.StartTime, now),
			tracker.DisplayDateTime(rec.EndTime, now),
			tracker.DisplayDifference(rec.StartTime, end),
			strings.Join(rec.Tags, ","),
		)
	}
	return tw.Flush()
}

func printTasks(w io.Writer, tasks []models.Task) error {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRI\tPROJECT\tDUE\tURG\tDESCRIPTION")
	for _, t := range tasks {
		desc := t.Description
		if t.IsStarted() {
			desc = "* " + desc
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f\t%s\n",
			t.ID, t.Priority, t.Project, tracker.DisplayDateTime(t.DueTime, time.Now()), t.Urgency, desc)
	}
	return tw.Flush()
}

func printTask(w io.Writer, verb string, t models.Task) {
	fmt.Fprintf(w, "%s task %s: %s\n", verb, t.ID, t.Description)
}
