package practice

import (
	"fmt"
	"time"
)

// SpeedLabel formats an answer time for display. It always reports seconds per word
// so labels stay comparable across the words of one session.
func SpeedLabel(d time.Duration) string {
	if d <= 0 {
		return "0 sec per word"
	}

	seconds := int64(d.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	return fmt.Sprintf("%d sec per word", seconds)
}
