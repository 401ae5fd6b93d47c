package chat

import (
	"fmt"
	"time"
)

// FormatElapsed renders how long ago ts was, relative to now, as
// "N second(s) ago" below one minute and "N minute(s) ago" otherwise.
// There are no hour or day tiers.
func FormatElapsed(ts, now time.Time) string {
	seconds := int64(now.Sub(ts) / time.Second)
	if seconds < 0 {
		seconds = 0
	}

	if seconds < 60 {
		return plural(seconds, "second")
	}
	return plural(seconds/60, "minute")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s ago", n, unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
