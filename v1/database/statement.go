package database

import (
	"context"
	"regexp"
	"strings"
)

var (
	returningClause = regexp.MustCompile(`(?i)\bRETURNING\b`)
	upsertClause    = regexp.MustCompile(`(?is)\bON\s+CONFLICT\b.*\bDO\s+UPDATE\b`)
	leadingComment  = regexp.MustCompile(`^(\s+|--[^\n]*\n?|(?s:/\*.*?\*/))+`)
)

// Verb returns the upper-cased first keyword of a statement, skipping
// leading whitespace and comments.
func Verb(query string) string {
	q := leadingComment.ReplaceAllString(query, "")
	end := strings.IndexFunc(q, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
	if end < 0 {
		end = len(q)
	}
	return strings.ToUpper(q[:end])
}

// HasReturning reports whether a statement carries a RETURNING clause.
func HasReturning(query string) bool {
	return returningClause.MatchString(query)
}

// IsUpsert reports whether an insert may resolve a conflict by updating an
// existing row. Such a statement generates no id on the update path.
func IsUpsert(query string) bool {
	return IsInsert(query) && upsertClause.MatchString(query)
}

// IsInsert reports whether a statement inserts rows.
func IsInsert(query string) bool {
	switch Verb(query) {
	case "INSERT", "REPLACE":
		return true
	}
	return false
}

// EffectFromRows builds the Result of a RETURNING statement from its rows.
// InsertedID is only set for an insert that returned exactly one row with an
// integer id column, or an integer first column when there is no id.
func EffectFromRows(query string, rows []Row) Result {
	res := Result{RowsAffected: int64(len(rows))}
	if len(rows) != 1 || !IsInsert(query) {
		return res
	}
	row := rows[0]
	if id, ok := row.Get("id"); ok {
		if n, isInt := id.(int64); isInt && n > 0 {
			res.InsertedID = n
		}
		return res
	}
	if cols := row.Columns(); len(cols) > 0 {
		if n, isInt := row.Value(cols[0]).(int64); isInt && n > 0 {
			res.InsertedID = n
		}
	}
	return res
}

// TemplateStatement is a Statement that sends its template through a Client
// on every call. It binds to no connection of its own.
type TemplateStatement struct {
	client   Client
	template string
}

// NewTemplateStatement returns a Statement executing template through c.
func NewTemplateStatement(c Client, template string) *TemplateStatement {
	return &TemplateStatement{client: c, template: template}
}

func (s *TemplateStatement) Run(ctx context.Context, args ...any) (Result, error) {
	return s.client.Execute(ctx, s.template, args...)
}

func (s *TemplateStatement) GetOne(ctx context.Context, args ...any) (Row, bool, error) {
	return s.client.GetOne(ctx, s.template, args...)
}

func (s *TemplateStatement) All(ctx context.Context, args ...any) ([]Row, error) {
	return s.client.Query(ctx, s.template, args...)
}

func (s *TemplateStatement) Template() string {
	return s.template
}
