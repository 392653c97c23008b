// Package sqlstore implements the decision and group stores on top of
// database/sql. The same statements serve PostgreSQL and SQLite; a Dialect
// supplies placeholder syntax and driver error mapping.
package sqlstore

import (
	"strconv"
	"strings"
)

// Dialect captures the differences between SQL backends.
type Dialect struct {
	// Name identifies the backend in logs.
	Name string
	// Numbered selects $1-style placeholders instead of ?.
	Numbered bool
	// MapError translates driver errors into store errors.
	MapError func(error) error
}

// Rebind rewrites ? placeholders in query for the dialect.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) mapError(err error) error {
	if err == nil || d.MapError == nil {
		return err
	}
	return d.MapError(err)
}
