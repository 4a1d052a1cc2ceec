package tracker

import (
	"fmt"
	"time"
)

const (
	clockLayout = "15:04"
	dateLayout  = "02.01.2006 15:04"
)

// FormatSeconds renders a duration as MM:SS, or HH:MM:SS once it reaches an hour
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	rest := seconds % 60
	if hours == 0 {
		return fmt.Sprintf("%02d:%02d", minutes, rest)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, rest)
}

// DisplayDateTime renders t relative to now: "-" when unset, the clock time for
// today, "Yesterday HH:MM" for the previous day and a full date otherwise.
func DisplayDateTime(t *time.Time, now time.Time) string {
	if t == nil {
		return "-"
	}
	local := t.In(now.Location())

	y, m, d := local.Date()
	ny, nm, nd := now.Date()
	if y == ny && m == nm && d == nd {
		return local.Format(clockLayout)
	}

	py, pm, pd := now.AddDate(0, 0, -1).Date()
	if y == py && m == pm && d == pd {
		return "Yesterday " + local.Format(clockLayout)
	}

	return local.Format(dateLayout)
}

// DisplayDifference renders the time between start and end, or "" if either is unset
func DisplayDifference(start, end *time.Time) string {
	if start == nil || end == nil {
		return ""
	}
	return FormatSeconds(elapsedSeconds(*start, *end))
}

// elapsedSeconds works on whole epoch seconds and clamps clock skew to zero
func elapsedSeconds(start, end time.Time) int {
	diff := end.Unix() - start.Unix()
	if diff < 0 {
		return 0
	}
	return int(diff)
}
