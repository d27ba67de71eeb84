package core

import "fmt"

const displayPreviewRunes = 200

// FormatForDisplay renders a retrieval result as a one-line markdown summary.
func FormatForDisplay(r Result) string {
	date := ""
	if !r.Record.UploadTime.IsZero() {
		date = r.Record.UploadTime.Format("2006-01-02")
	}
	return fmt.Sprintf("**%s** (%s, %s): %s...",
		r.Record.Filename, r.Record.SourceType, date, truncateRunes(r.Content, displayPreviewRunes))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
