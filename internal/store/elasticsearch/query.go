package elasticsearch

import (
	"fmt"
	"strings"

	"github.com/goto/quicksearch/core/search"
	"github.com/olivere/elastic/v7"
)

const stringifyScript = `
if (doc[params.field].size() == 0) { return false; }
String value = String.valueOf(doc[params.field].value);
String term = params.term;
if (!params.case_sensitive) { value = value.toLowerCase(); term = term.toLowerCase(); }
return params.exact ? value == term : value.contains(term);`

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// Translate converts a compiled search predicate into a query. Text fields
// are matched on their keyword sub-field, other fields through a script on
// their stringified doc value.
func Translate(pred search.Predicate) (elastic.Query, error) {
	return translate(pred.Expr())
}

func translate(expr search.Expr) (elastic.Query, error) {
	switch e := expr.(type) {
	case search.And:
		queries, err := translateAll(e)
		if err != nil {
			return nil, err
		}
		return elastic.NewBoolQuery().Must(queries...), nil
	case search.Or:
		if len(e) == 0 {
			return elastic.NewMatchNoneQuery(), nil
		}
		queries, err := translateAll(e)
		if err != nil {
			return nil, err
		}
		return elastic.NewBoolQuery().Should(queries...).MinimumNumberShouldMatch(1), nil
	case search.Not:
		query, err := translate(e.Expr)
		if err != nil {
			return nil, err
		}
		return elastic.NewBoolQuery().MustNot(query), nil
	case search.Const:
		if e {
			return elastic.NewMatchAllQuery(), nil
		}
		return elastic.NewMatchNoneQuery(), nil
	case search.Match:
		return buildMatch(e), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedExpression, expr)
}

func translateAll(exprs []search.Expr) ([]elastic.Query, error) {
	queries := make([]elastic.Query, 0, len(exprs))
	for _, child := range exprs {
		query, err := translate(child)
		if err != nil {
			return nil, err
		}
		queries = append(queries, query)
	}
	return queries, nil
}

func buildMatch(m search.Match) elastic.Query {
	field := strings.Join(m.Field.Keys, ".")
	if !m.Field.Text {
		script := elastic.NewScript(stringifyScript).Lang("painless").Params(map[string]interface{}{
			"field":          field,
			"term":           m.Term,
			"exact":          m.Mode == search.ModeEquals,
			"case_sensitive": m.CaseSensitive,
		})
		return elastic.NewScriptQuery(script)
	}

	field += ".keyword"
	if m.Mode == search.ModeEquals {
		query := elastic.NewTermQuery(field, m.Term)
		if !m.CaseSensitive {
			query = query.CaseInsensitive(true)
		}
		return query
	}

	query := elastic.NewWildcardQuery(field, "*"+wildcardEscaper.Replace(m.Term)+"*")
	if !m.CaseSensitive {
		query = query.CaseInsensitive(true)
	}
	return query
}
