//go:build !linux

package pid

import "time"

// boot time is unknown; only the staleness window applies
func systemBootTime() time.Time {
	return time.Time{}
}
