package utils

import "time"

// Now returns the current time in UTC; every stored timestamp goes through it
func Now() time.Time {
	return time.Now().UTC()
}
