package media

import "time"

// maxInt returns the maximum of two int values
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// timeFromUnix restores a local wall-clock time, matching how goexif parses
// EXIF timestamps without an offset tag.
func timeFromUnix(ts int64) time.Time {
	return time.Unix(ts, 0).In(time.Local)
}
