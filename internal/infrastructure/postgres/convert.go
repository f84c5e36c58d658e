package postgres

import (
	"strconv"
	"strings"
)

// The hosted backend stores quantity and price columns as text. These
// helpers convert at the adapter boundary; the rest of the system only ever
// sees numeric types. Missing or unparseable values become 0.

func parseInt(s *string) int {
	if s == nil {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil {
		return 0
	}
	return v
}

func parseInt64(s *string) int64 {
	if s == nil {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(*s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}

func formatInt64(v int64) string {
	return strconv.FormatInt(v, 10)
}
