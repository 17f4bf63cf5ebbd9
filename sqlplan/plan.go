// Package sqlplan builds the SQL & parameter planner (C3): the three
// bound-once statement templates and the CREATE TABLE/INDEX pair, emitted
// from a schema.Descriptor the same way the teacher's schema.Generator
// assembled DDL text from a parsed table shape — by string concatenation,
// not a query builder or AST.
package sqlplan

import (
	"fmt"
	"strings"

	"github.com/k0kubun/colgroup/schema"
)

// Plan holds the SQL fragments derived once from a Descriptor. Building a
// Plan does no I/O; SelectSQL/DeleteSQL/CopySQL/CreateTableSQL only format
// strings from fields computed in Build.
type Plan struct {
	Table      string
	WhereSQL   string
	ParamOrder []string
	AllColumns []string

	desc *schema.Descriptor
}

// Build derives a Plan from desc. The $n bind order is GroupKeys first,
// then the Timestamp bounds (end_at, start_at), matching spec.md §4.3.
func Build(desc *schema.Descriptor) *Plan {
	p := &Plan{Table: desc.Table, desc: desc}

	var where []string
	n := 1
	for _, gk := range desc.GroupFields {
		where = append(where, fmt.Sprintf("%s = ANY($%d)", gk.Column, n))
		p.ParamOrder = append(p.ParamOrder, gk.Column)
		n++
	}
	if desc.TimeField != nil {
		where = append(where, fmt.Sprintf("end_at >= $%d AND start_at <= $%d", n, n+1))
		p.ParamOrder = append(p.ParamOrder, "__ts_end__", "__ts_start__")
		n += 2
	}
	p.WhereSQL = strings.Join(where, " AND ")

	for _, gk := range desc.GroupFields {
		p.AllColumns = append(p.AllColumns, gk.Column)
	}
	if desc.TimeField != nil {
		p.AllColumns = append(p.AllColumns, "start_at", "end_at", desc.TimeField.Column)
	}
	for _, f := range desc.PayloadCols {
		p.AllColumns = append(p.AllColumns, f.Column)
	}

	return p
}

// SelectSQL projects cols (storage order expected) from Table, filtered by
// WhereSQL.
func (p *Plan) SelectSQL(cols []string) string {
	if p.WhereSQL == "" {
		return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), p.Table)
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(cols, ", "), p.Table, p.WhereSQL)
}

// DeleteSQL deletes every row matching WhereSQL and returns cols (storage
// order expected) from the deleted rows so the caller can re-group them,
// per spec.md §4.6. cols obeys the same Fields-driven projection Load
// uses: a narrowed Fields selector on Delete skips decoding the same
// payload columns it would skip on Load (only the post-decompression
// predicate is never applied to a Delete result).
func (p *Plan) DeleteSQL(cols []string) string {
	if p.WhereSQL == "" {
		return fmt.Sprintf("DELETE FROM %s RETURNING %s", p.Table, strings.Join(cols, ", "))
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s RETURNING %s", p.Table, p.WhereSQL, strings.Join(cols, ", "))
}

// CopySQL opens a binary-COPY stream writing cols in the given order.
func (p *Plan) CopySQL(cols []string) string {
	return fmt.Sprintf("COPY %s (%s) FROM STDIN BINARY", p.Table, strings.Join(cols, ", "))
}

// CreateTableSQL emits the §6 CREATE TABLE + CREATE INDEX pair as a single
// multi-statement string. This is a Go addition beyond spec.md's prose:
// the Descriptor already has everything needed to emit the literal DDL, so
// shipping it alongside the planner costs nothing extra to derive.
func (p *Plan) CreateTableSQL() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE %s (\n", p.Table)

	var cols []string
	for _, gk := range p.desc.GroupFields {
		cols = append(cols, fmt.Sprintf("  %s %s NOT NULL", gk.Column, gk.SQLType()))
	}
	if p.desc.TimeField != nil {
		cols = append(cols, "  start_at timestamptz NOT NULL")
		cols = append(cols, "  end_at timestamptz NOT NULL")
		cols = append(cols, fmt.Sprintf("  %s bytea STORAGE EXTERNAL NOT NULL", p.desc.TimeField.Column))
	}
	for _, f := range p.desc.PayloadCols {
		cols = append(cols, fmt.Sprintf("  %s bytea STORAGE EXTERNAL NOT NULL", f.Column))
	}
	sb.WriteString(strings.Join(cols, ",\n"))
	sb.WriteString("\n);\n")

	var idxCols []string
	for _, gk := range p.desc.GroupFields {
		idxCols = append(idxCols, gk.Column)
	}
	if p.desc.TimeField != nil {
		idxCols = append(idxCols, "end_at", "start_at")
	}
	fmt.Fprintf(&sb, "CREATE INDEX ON %s(%s);\n", p.Table, strings.Join(idxCols, ", "))

	return sb.String()
}
