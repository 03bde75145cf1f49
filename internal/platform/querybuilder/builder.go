package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// Condition renders one predicate of a WHERE clause. Conditions are joined
// with AND.
type Condition interface {
	render(q *query)
}

// query accumulates SQL text and numbered arguments.
type query struct {
	buf  strings.Builder
	args []any
}

func (q *query) write(parts ...string) {
	for _, part := range parts {
		q.buf.WriteString(part)
	}
}

// bind appends value and writes its $n placeholder.
func (q *query) bind(value any) {
	q.args = append(q.args, value)
	q.buf.WriteString("$" + strconv.Itoa(len(q.args)))
}

// expr writes a fragment whose `?` markers take args in order.
func (q *query) expr(fragment string, args []any) {
	next := 0
	for i := 0; i < len(fragment); i++ {
		if fragment[i] == '?' && next < len(args) {
			q.bind(args[next])
			next++
			continue
		}
		q.buf.WriteByte(fragment[i])
	}
}

func (q *query) where(conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			q.write(" WHERE ")
		} else {
			q.write(" AND ")
		}
		c.render(q)
	}
}

type compare struct {
	column string
	op     string
	value  any
}

func (c compare) render(q *query) {
	q.write(c.column, " ", c.op, " ")
	q.bind(c.value)
}

func Eq(column string, value any) Condition  { return compare{column: column, op: "=", value: value} }
func Gte(column string, value any) Condition { return compare{column: column, op: ">=", value: value} }
func Lt(column string, value any) Condition  { return compare{column: column, op: "<", value: value} }

type inList struct {
	column string
	values []any
}

// In renders `column IN ($n, ...)`; an empty list matches nothing.
func In(column string, values []any) Condition {
	return inList{column: column, values: values}
}

func (c inList) render(q *query) {
	if len(c.values) == 0 {
		q.write("1=0")
		return
	}
	q.write(c.column, " IN (")
	for i, v := range c.values {
		if i > 0 {
			q.write(", ")
		}
		q.bind(v)
	}
	q.write(")")
}

type rawExpr struct {
	sql  string
	args []any
}

// Expr is a raw predicate with `?` markers, e.g. Expr("name LIKE ?", "%a%").
func Expr(sql string, args ...any) Condition {
	return rawExpr{sql: sql, args: args}
}

func (c rawExpr) render(q *query) {
	q.expr(c.sql, c.args)
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var q query
	q.write("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	q.where(b.where)
	if len(b.orderBy) > 0 {
		q.write(" ORDER BY ", strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		q.write(" LIMIT ", strconv.Itoa(b.limit))
	}
	return q.buf.String(), q.args, nil
}

type assignment struct {
	column string
	sql    string
	args   []any
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	return b.SetExpr(column, "?", value)
}

// SetExpr assigns a raw expression, e.g. SetExpr("updated_at", "NOW()").
func (b *UpdateBuilder) SetExpr(column, sql string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, sql: sql, args: args})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	var q query
	q.write("UPDATE ", b.table, " SET ")
	for i, s := range b.sets {
		if i > 0 {
			q.write(", ")
		}
		q.write(s.column, " = ")
		q.expr(s.sql, s.args)
	}
	q.where(b.where)
	return q.buf.String(), q.args, nil
}
