package pgxstore

import (
	"fmt"

	"github.com/screwyprof/faucet/web/history"
)

// SQL queries
const (
	baseEventsQuery = "SELECT sequence, id, kind, account, counterparty, amount, paused, occurred_at FROM audit_events"
)

// EventsQueryBuilder provides a domain-specific language for building event queries
type EventsQueryBuilder struct {
	sql  string
	args []any
}

// NewEventsQuery creates a new event query builder
func NewEventsQuery() *EventsQueryBuilder {
	return &EventsQueryBuilder{
		sql: baseEventsQuery,
	}
}

// ForCriteria applies the event criteria to the query in one fluent call
func (q *EventsQueryBuilder) ForCriteria(criteria history.EventsCriteria) *EventsQueryBuilder {
	return q.
		filterByAccount(criteria.Account).
		filterByKind(criteria.Kind).
		orderBySequenceDesc().
		paginateWithDetection(criteria)
}

// filterByAccount narrows to events the address took part in, on either side
func (q *EventsQueryBuilder) filterByAccount(account history.AccountFilter) *EventsQueryBuilder {
	if account.IsSet() {
		q.addWhereCondition("(account = $%d OR counterparty = $%d)", account.String())
	}
	return q
}

// filterByKind adds kind filtering if the kind is specified
func (q *EventsQueryBuilder) filterByKind(kind history.KindFilter) *EventsQueryBuilder {
	if kind.IsSet() {
		q.addWhereCondition("kind = $%d", kind.String())
	}
	return q
}

// orderBySequenceDesc adds sequence ordering (most recent first)
func (q *EventsQueryBuilder) orderBySequenceDesc() *EventsQueryBuilder {
	q.sql += " ORDER BY sequence DESC"
	return q
}

// paginateWithDetection adds pagination with "has more" detection using LIMIT n+1
func (q *EventsQueryBuilder) paginateWithDetection(criteria history.EventsCriteria) *EventsQueryBuilder {
	// Request one extra item to detect if there are more pages
	limit := criteria.ItemsPerPage() + 1
	offset := criteria.ItemsToSkip()

	q.addParameter("LIMIT $%d", limit)

	if offset > 0 {
		q.addParameter("OFFSET $%d", offset)
	}

	return q
}

// Build returns the final SQL query and arguments
func (q *EventsQueryBuilder) Build() (string, []any) {
	return q.sql, q.args
}

// Helper methods for building SQL

// addWhereCondition adds a WHERE condition, handling AND logic automatically.
// The clause may repeat the placeholder verb when it compares one value
// against several columns.
func (q *EventsQueryBuilder) addWhereCondition(sqlClause string, value any) {
	placeholder := q.nextPlaceholder()
	rendered := fmt.Sprintf(sqlClause, placeholderArgs(sqlClause, placeholder)...)

	if q.hasWhereClause() {
		q.sql += " AND " + rendered
	} else {
		q.sql += " WHERE " + rendered
	}

	q.args = append(q.args, value)
}

// addParameter adds a SQL clause with a parameter
func (q *EventsQueryBuilder) addParameter(sqlClause string, value any) {
	placeholder := q.nextPlaceholder()
	q.sql += " " + fmt.Sprintf(sqlClause, placeholder)
	q.args = append(q.args, value)
}

// hasWhereClause checks if the query already has a WHERE clause
func (q *EventsQueryBuilder) hasWhereClause() bool {
	return len(q.args) > 0
}

// nextPlaceholder returns the next PostgreSQL placeholder ($1, $2, etc.)
func (q *EventsQueryBuilder) nextPlaceholder() int {
	return len(q.args) + 1
}

// placeholderArgs repeats the placeholder number once per %d verb in the clause
func placeholderArgs(sqlClause string, placeholder int) []any {
	count := 0
	for i := 0; i+1 < len(sqlClause); i++ {
		if sqlClause[i] == '%' && sqlClause[i+1] == 'd' {
			count++
		}
	}

	args := make([]any, count)
	for i := range args {
		args[i] = placeholder
	}
	return args
}
