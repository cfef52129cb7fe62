package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/goto/quicksearch/core/search"
	"github.com/olivere/elastic/v7"
)

const defaultMaxResults = 200

type searchHit struct {
	Index  string          `json:"_index"`
	Source json.RawMessage `json:"_source"`
}

type searchResponse struct {
	Hits struct {
		Total elastic.TotalHits `json:"total"`
		Hits  []searchHit       `json:"hits"`
	} `json:"hits"`
}

// SearchRepository serves the documents of one index as a search source.
// Documents are decoded into T from their _source, so T maps fields
// through json tags.
type SearchRepository[T any] struct {
	cli        *Client
	index      string
	maxResults int
	sort       []string
}

func NewSearchRepository[T any](cli *Client, index string, opts ...SearchRepositoryOption[T]) (*SearchRepository[T], error) {
	if cli == nil {
		return nil, errNilClient
	}
	if index == "" {
		return nil, errEmptyIndexName
	}

	r := &SearchRepository[T]{
		cli:        cli,
		index:      index,
		maxResults: defaultMaxResults,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.maxResults <= 0 {
		r.maxResults = defaultMaxResults
	}
	return r, nil
}

// Where returns the documents satisfying pred.
func (r *SearchRepository[T]) Where(ctx context.Context, pred search.Predicate) ([]T, error) {
	const op = "Where"

	recordType := reflect.TypeOf((*T)(nil)).Elem()
	for recordType.Kind() == reflect.Ptr {
		recordType = recordType.Elem()
	}
	if t := pred.Type(); t != nil && t != recordType {
		return nil, SearchError{Op: op, Index: r.index, Err: search.ErrPredicateTypeMismatch}
	}

	body, err := r.buildBody(pred)
	if err != nil {
		return nil, SearchError{Op: op, Index: r.index, Err: fmt.Errorf("build query: %w", err)}
	}

	start := time.Now()
	esSearch := r.cli.client.Search
	opts := []func(*esapi.SearchRequest){
		esSearch.WithBody(body),
		esSearch.WithIndex(r.index),
		esSearch.WithSize(r.maxResults),
		esSearch.WithIgnoreUnavailable(true),
		esSearch.WithContext(ctx),
	}
	if len(r.sort) > 0 {
		opts = append(opts, esSearch.WithSort(r.sort...))
	}

	res, err := esSearch(opts...)
	if err != nil {
		return nil, SearchError{Op: op, Index: r.index, Err: fmt.Errorf("execute search: %w", elasticSearchError(err))}
	}
	defer drainBody(res)

	if res.IsError() {
		code, reason := errorCodeAndReason(res)
		return nil, SearchError{
			Op:     op,
			Index:  r.index,
			ESCode: code,
			Err:    fmt.Errorf("execute search: %s", reason),
		}
	}

	var response searchResponse
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, SearchError{Op: op, Index: r.index, Err: fmt.Errorf("decode search response: %w", err)}
	}

	records := make([]T, 0, len(response.Hits.Hits))
	for _, hit := range response.Hits.Hits {
		var record T
		if err := json.Unmarshal(hit.Source, &record); err != nil {
			return nil, SearchError{Op: op, Index: hit.Index, Err: fmt.Errorf("decode document: %w", err)}
		}
		records = append(records, record)
	}

	r.cli.logger.Debug("search completed",
		"index", r.index,
		"hits", len(records),
		"total", response.Hits.Total.Value,
		"duration", time.Since(start).String(),
	)
	return records, nil
}

func (r *SearchRepository[T]) buildBody(pred search.Predicate) (*bytes.Reader, error) {
	query, err := Translate(pred)
	if err != nil {
		return nil, err
	}

	src, err := elastic.NewSearchSource().Query(query).Source()
	if err != nil {
		return nil, fmt.Errorf("build search source: %w", err)
	}

	payload, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("encode search source: %w", err)
	}
	return bytes.NewReader(payload), nil
}
