package turso

import (
	"fmt"
	"time"

	"learnlog/internal/domain"
)

// The go-libsql driver rewrites date-shaped text parameters on bind:
// binding "2024-01-01" stores "2024-01-01T00:00:00Z". Date columns can
// therefore hold either form, so scans accept both and date predicates in
// SQL compare through date() instead of raw text.
func scanDay(s string) (time.Time, error) {
	if d, err := domain.ParseDate(s); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	return domain.Day(t), nil
}
