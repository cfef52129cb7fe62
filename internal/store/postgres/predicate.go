package postgres

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/goto/quicksearch/core/search"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Translate converts a compiled search predicate into a where clause.
// Top-level fields map to their db columns; nested fields are read from a
// jsonb column by their json keys.
func Translate(pred search.Predicate) (sq.Sqlizer, error) {
	return translate(pred.Expr())
}

// WhereClause renders the translated predicate with dollar placeholders.
func WhereClause(pred search.Predicate) (string, []interface{}, error) {
	where, err := Translate(pred)
	if err != nil {
		return "", nil, err
	}
	return buildSQL(where)
}

func translate(expr search.Expr) (sq.Sqlizer, error) {
	switch e := expr.(type) {
	case search.And:
		clause := sq.And{}
		for _, child := range e {
			part, err := translate(child)
			if err != nil {
				return nil, err
			}
			clause = append(clause, part)
		}
		return clause, nil
	case search.Or:
		clause := sq.Or{}
		for _, child := range e {
			part, err := translate(child)
			if err != nil {
				return nil, err
			}
			clause = append(clause, part)
		}
		return clause, nil
	case search.Not:
		part, err := translate(e.Expr)
		if err != nil {
			return nil, err
		}
		return sq.Expr("NOT (?)", part), nil
	case search.Const:
		if e {
			return sq.And{}, nil
		}
		return sq.Or{}, nil
	case search.Match:
		return buildMatch(e)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedExpression, expr)
}

func buildMatch(m search.Match) (sq.Sqlizer, error) {
	field, err := buildField(m.Field)
	if err != nil {
		return nil, err
	}

	if m.Mode == search.ModeEquals {
		if m.CaseSensitive {
			return sq.Eq{field: m.Term}, nil
		}
		return sq.Expr(fmt.Sprintf("LOWER(%s) = ?", field), strings.ToLower(m.Term)), nil
	}

	pattern := fmt.Sprint("%", likeEscaper.Replace(m.Term), "%")
	if m.CaseSensitive {
		return sq.Like{field: pattern}, nil
	}
	return sq.ILike{field: pattern}, nil
}

// buildField renders the text expression of a field. Nested paths follow
// the json keys inside the top-level column, e.g. data->'owner'->>'name'.
func buildField(ref search.FieldRef) (string, error) {
	if len(ref.Columns) == 0 {
		return "", fmt.Errorf("%w: empty field path", ErrUnsupportedExpression)
	}

	column := ref.Columns[0]
	if len(ref.Columns) == 1 {
		if ref.Text {
			return column, nil
		}
		return fmt.Sprintf("CAST(%s AS TEXT)", column), nil
	}

	keys := ref.Keys[1:]
	parts := []string{column}
	for i, key := range keys {
		op := "->"
		if i == len(keys)-1 {
			op = "->>"
		}
		parts = append(parts, fmt.Sprintf("%s'%s'", op, strings.ReplaceAll(key, "'", "''")))
	}
	return strings.Join(parts, ""), nil
}
