// Package scope is the entity isolation filter: it rewrites outgoing read
// queries to add the tenant and not-deleted predicates. Repositories call
// Conditions when assembling a SELECT; the filter never fetches or mutates
// data itself.
package scope

import (
	"errors"
	"fmt"
)

// ErrNoEntity is returned when a tenant scoped query executes without an
// entity bound to the session. This is a programming error at the call
// site, surfaced instead of silently widening the query.
var ErrNoEntity = errors.New("no entity bound to the session for a tenant scoped query")

// Options are the per-session defaults for filter suppression. Both
// default to false; per-call options take precedence.
type Options struct {
	IncludeDeleted  bool
	IgnoreIsolation bool
}

// Option is a per-call filter suppression.
type Option func(*Options)

// IncludeDeleted makes the query return recycled and destroyed records
// as well.
func IncludeDeleted() Option {
	return func(o *Options) { o.IncludeDeleted = true }
}

// IgnoreIsolation makes the query span all tenants.
func IgnoreIsolation() Option {
	return func(o *Options) { o.IgnoreIsolation = true }
}

// Merge applies per-call options on top of session defaults.
func Merge(session Options, opts ...Option) Options {
	merged := session
	for _, opt := range opts {
		opt(&merged)
	}

	return merged
}

// Table describes the statically known shape of a queried table.
type Table struct {
	// Recyclable tables carry deleted_at and destroyed_at columns.
	Recyclable bool
	// Isolated tables carry an entity_id column. The entities table is
	// the one table that is never isolated.
	Isolated bool
	// Alias optionally prefixes column references in the emitted SQL.
	Alias string
}

// Conditions returns the filter predicates for a table as an "AND ..."
// SQL fragment appended to an existing WHERE clause, together with the
// extended argument list. Placeholders continue from len(args).
func Conditions(table Table, o Options, entityID string, args []any) (string, []any, error) {
	prefix := ""
	if table.Alias != "" {
		prefix = table.Alias + "."
	}

	clause := ""

	if table.Recyclable && !o.IncludeDeleted {
		clause += fmt.Sprintf(" AND %[1]sdeleted_at IS NULL AND %[1]sdestroyed_at IS NULL", prefix)
	}

	if table.Isolated && !o.IgnoreIsolation {
		if entityID == "" {
			return "", nil, ErrNoEntity
		}

		args = append(args, entityID)
		clause += fmt.Sprintf(" AND %sentity_id = $%d", prefix, len(args))
	}

	return clause, args, nil
}
