package task

import (
	"strings"
	"time"
)

// dueDateLayouts are tried in order. Layouts without a zone yield UTC.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02T15Z07:00",
	"2006-01-02T15",
	"2006-01-02",
}

// ParseDueDate parses an ISO-8601 date or date-time.
// A trailing "Z" means UTC, a space may separate date and time,
// inputs without an offset are taken as UTC, and the result is always UTC.
func ParseDueDate(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if len(v) > 10 && v[10] == ' ' {
		v = v[:10] + "T" + v[11:]
	}
	if strings.HasSuffix(v, "z") {
		v = v[:len(v)-1] + "Z"
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &ValidationError{Message: MsgInvalidDueDate}
}
