package cli

import (
	"context"
	"fmt"
	"os"

	esStore "github.com/goto/quicksearch/internal/store/elasticsearch"
	"github.com/goto/quicksearch/internal/store/postgres"
	"github.com/goto/salt/log"
)

func initLogger(logLevel string) log.Logger {
	return log.NewLogrus(
		log.LogrusWithLevel(logLevel),
		log.LogrusWithWriter(os.Stderr),
	)
}

func initElasticsearch(ctx context.Context, logger log.Logger, config esStore.Config) (*esStore.Client, error) {
	esClient, err := esStore.NewClient(logger, config)
	if err != nil {
		return nil, fmt.Errorf("create new elasticsearch client: %w", err)
	}
	got, err := esClient.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client init: %w", err)
	}
	logger.Debug("initialized elasticsearch connection", "es_info", got)

	return esClient, nil
}

func initPostgres(logger log.Logger, config postgres.Config) (*postgres.Client, error) {
	pgClient, err := postgres.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("error creating postgres client: %w", err)
	}
	logger.Debug("initialized postgres connection", "host", config.Host, "port", config.Port)

	return pgClient, nil
}
