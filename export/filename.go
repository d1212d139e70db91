package export

import (
	"strings"
)

// FileName returns the download name of the deck for an ISO date:
// 2024-06-01 -> 01-06-2024.pptx. Dates that do not split into three parts
// fall back to report-<date>.pptx.
func FileName(date string) string {
	parts := strings.Split(date, "-")
	var name string
	if len(parts) == 3 {
		name = parts[2] + "-" + parts[1] + "-" + parts[0] + ".pptx"
	} else {
		name = "report-" + date + ".pptx"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
}
