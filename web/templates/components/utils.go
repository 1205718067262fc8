package components

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mergestat/timediff"
)

// FormatRelativeTime formats a time.Time as a relative time string like "3 days ago"
func FormatRelativeTime(t time.Time) string {
	return timediff.TimeDiff(t)
}

// FormatDate formats a time.Time as a calendar date.
func FormatDate(t time.Time) string {
	return t.Format("2 Jan 2006")
}

// FormatFileSize formats a file size in bytes to a human-readable string
func FormatFileSize(bytes int64) string {
	if bytes < 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(bytes))
}

// AnswerLetter returns the label of an answer position, A to D.
func AnswerLetter(i int) string {
	if i < 0 || i > 25 {
		return "?"
	}
	return string(rune('A' + i))
}
