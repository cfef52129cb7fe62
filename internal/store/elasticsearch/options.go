package elasticsearch

import "github.com/elastic/go-elasticsearch/v7"

type ClientOption func(*Client)

func WithClient(cli *elasticsearch.Client) ClientOption {
	return func(c *Client) {
		c.client = cli
	}
}

type SearchRepositoryOption[T any] func(*SearchRepository[T])

// WithMaxResults caps the hits a search returns.
func WithMaxResults[T any](size int) SearchRepositoryOption[T] {
	return func(r *SearchRepository[T]) {
		r.maxResults = size
	}
}

// WithSort sorts hits by the given fields, e.g. "name.keyword:asc".
func WithSort[T any](sort ...string) SearchRepositoryOption[T] {
	return func(r *SearchRepository[T]) {
		r.sort = sort
	}
}
