package util

import (
	"strconv"
	"strings"
)

var sizeUnits = []struct {
	suffix string
	mult   float64
}{
	{"GIB", 1 << 30}, {"MIB", 1 << 20}, {"KIB", 1 << 10},
	{"GB", 1 << 30}, {"MB", 1 << 20}, {"KB", 1 << 10},
	{"G", 1 << 30}, {"M", 1 << 20}, {"K", 1 << 10},
	{"B", 1},
}

// ParseSize parses sizes such as "2GB", "1.5GiB", "500M" or "4096" into
// bytes. Units are binary multiples. Unparseable or negative input
// yields defaultBytes.
func ParseSize(s string, defaultBytes int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	mult := 1.0
	for _, u := range sizeUnits {
		if strings.HasSuffix(s, u.suffix) {
			s, mult = strings.TrimSpace(strings.TrimSuffix(s, u.suffix)), u.mult
			break
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 {
		return defaultBytes
	}
	return int64(n * mult)
}

// MaskSecret keeps the first visible characters of a credential for logs.
func MaskSecret(s string, visible int) string {
	if len(s) <= visible*2 {
		return "***"
	}
	return s[:visible] + "***"
}
