package util

import (
	"fmt"
	"time"
)

var byteUnits = []string{"KB", "MB", "GB", "TB"}

// Human formats a byte count with binary multiples, e.g. "3.20 MB".
func Human(n int64) string {
	if n < 1<<10 {
		return fmt.Sprintf("%d B", n)
	}

	v := float64(n) / (1 << 10)
	unit := 0
	for v >= 1<<10 && unit < len(byteUnits)-1 {
		v /= 1 << 10
		unit++
	}

	return fmt.Sprintf("%.2f %s", v, byteUnits[unit])
}

// HumanRate formats throughput over elapsed, e.g. "1.50 MB/s".
func HumanRate(n int64, elapsed time.Duration) string {
	if elapsed <= 0 {
		return "-"
	}

	return Human(int64(float64(n)/elapsed.Seconds())) + "/s"
}
