package format

import (
	"fmt"
	"strings"
	"time"
)

// Duration renders an elapsed duration as "Xd Xh Xm Xs". Units above the
// largest non-zero unit are omitted; once a unit appears, every smaller
// unit appears too, even when zero. Seconds are always shown.
func Duration(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}

	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if len(parts) > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if len(parts) > 0 || minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
