package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/goto/quicksearch/core/search"
	"github.com/goto/quicksearch/core/validator"
	esStore "github.com/goto/quicksearch/internal/store/elasticsearch"
	"github.com/goto/quicksearch/internal/store/postgres"
	"github.com/goto/quicksearch/pkg/statsd"
	"github.com/goto/salt/log"
	"github.com/goto/salt/printer"
	"github.com/goto/salt/term"
	"github.com/spf13/cobra"
)

const (
	sourceFile          = "file"
	sourcePostgres      = "postgres"
	sourceElasticsearch = "elasticsearch"
)

type searchFlags struct {
	query         string
	exact         bool
	caseSensitive bool
	anyTerm       bool
	noChildren    bool
	depth         int
	columns       []string
	excluded      []string
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.exact, "exact", false, "match whole field values instead of substrings")
	cmd.Flags().BoolVar(&f.caseSensitive, "case-sensitive", false, "compare case-sensitively")
	cmd.Flags().BoolVar(&f.anyTerm, "or", false, "match records containing any term instead of every term")
	cmd.Flags().BoolVar(&f.noChildren, "no-children", false, "do not search nested fields")
	cmd.Flags().IntVar(&f.depth, "depth", 1, "maximum nesting depth searched")
	cmd.Flags().StringSliceVar(&f.columns, "column", nil, "restrict the search to these fields or dotted paths")
	cmd.Flags().StringSliceVar(&f.excluded, "exclude", nil, "leave these fields out of the search")
}

// options overlays the flags the user set on the configured defaults.
func (f *searchFlags) options(cmd *cobra.Command, base search.Options) search.Options {
	opts := base
	changed := cmd.Flags().Changed
	if changed("exact") {
		opts.ExactMatch = f.exact
	}
	if changed("case-sensitive") {
		opts.CaseSensitive = f.caseSensitive
	}
	if changed("or") {
		opts.MultiTermOperator = search.OperatorAnd
		if f.anyTerm {
			opts.MultiTermOperator = search.OperatorOr
		}
	}
	if changed("no-children") {
		opts.IncludeChildProperties = !f.noChildren
	}
	if changed("depth") {
		opts.MaxSearchDepth = f.depth
	}
	if changed("column") {
		opts.ColumnNames = f.columns
	}
	if changed("exclude") {
		opts.ExcludedColumns = f.excluded
	}
	return opts
}

func searchCommand(cfg *Config) *cobra.Command {
	var (
		flags      searchFlags
		source     string
		table      string
		index      string
		limit      int
		outputType string
	)

	cmd := &cobra.Command{
		Use:   "search [file]",
		Short: "Search records with a free-text query",
		Long: heredoc.Doc(`
			Search records with a free-text query.

			Records come from a json or yaml file holding a list of objects, a postgres
			table or an elasticsearch index. Every whitespace separated term of the
			query must match some field of a record, or any term with --or.
		`),
		Example: heredoc.Doc(`
			$ quicksearch search missions.yaml -q "nasa apollo"
			$ quicksearch search missions.json -q nasa --column name --column owner.name -o json
			$ quicksearch search --source postgres --table assets -q "kafka orders" --exact
			$ quicksearch search --source elasticsearch --index assets -q orders --or
		`),
		Args: cobra.MaximumNArgs(1),
		Annotations: map[string]string{
			"group": "core",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validator.ValidateOneOf(source, sourceFile, sourcePostgres, sourceElasticsearch); err != nil {
				return fmt.Errorf("%w: %s", errUnknownSource, err)
			}
			if err := validator.ValidateOneOf(outputType, "table", "json"); err != nil {
				return fmt.Errorf("invalid output type: %w", err)
			}

			logger := initLogger(cfg.LogLevel)

			reporter, err := statsd.Init(logger, cfg.StatsD)
			if err != nil {
				return err
			}
			defer reporter.Close()

			engine, err := search.NewEngine(search.WithPredicateCacheSize(cfg.PredicateCacheSize))
			if err != nil {
				return err
			}

			opts := flags.options(cmd, cfg.Search)
			s := searcher{
				cmd:        cmd,
				cfg:        cfg,
				logger:     logger,
				engine:     engine,
				query:      flags.query,
				opts:       opts,
				limit:      limit,
				outputType: outputType,
			}

			start := time.Now()
			switch source {
			case sourceFile:
				if len(args) == 0 {
					return errMissingFile
				}
				err = s.searchFile(args[0])
			case sourcePostgres:
				err = s.searchPostgres(cmd.Context(), table)
			case sourceElasticsearch:
				err = s.searchElasticsearch(cmd.Context(), index)
			default:
				return errUnknownSource
			}

			metric := reporter.Timing("cli.search", time.Since(start)).Tag("source", source)
			if err != nil {
				metric.Failure(err).Publish()
				return err
			}
			metric.Success().Publish()

			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.query, "query", "q", "", "free-text query, terms are separated by whitespace")
	cmd.Flags().StringVarP(&source, "source", "s", sourceFile, "records source, one of \"file postgres elasticsearch\"")
	cmd.Flags().StringVar(&table, "table", "assets", "postgres table searched with --source postgres")
	cmd.Flags().StringVar(&index, "index", "assets", "elasticsearch index searched with --source elasticsearch")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of records returned by a store source")
	cmd.Flags().StringVarP(&outputType, "out", "o", "table", "flag to control output viewing, for json `-o json`")

	return cmd
}

type searcher struct {
	cmd        *cobra.Command
	cfg        *Config
	logger     log.Logger
	engine     *search.Engine
	query      string
	opts       search.Options
	limit      int
	outputType string
}

func (s searcher) searchFile(path string) error {
	records, err := parseRecordsFile(path)
	if err != nil {
		return err
	}

	result, err := search.Filter(s.engine, records, s.query, s.opts)
	if err != nil {
		return err
	}
	s.logger.Debug("searched records file", "path", path, "records", len(records), "matches", len(result))

	if s.outputType == "json" {
		if result == nil {
			result = []map[string]interface{}{}
		}
		return prettyPrint(s.cmd.OutOrStdout(), result)
	}

	printer.Table(s.cmd.OutOrStdout(), recordRows(result))
	fmt.Fprintln(s.cmd.OutOrStdout(), term.Greenf("%d of %d records matched", len(result), len(records)))
	return nil
}

func (s searcher) searchPostgres(ctx context.Context, table string) error {
	spinner := printer.Spin("")
	client, err := initPostgres(s.logger, s.cfg.DB)
	if err != nil {
		spinner.Stop()
		return err
	}
	defer client.Close()

	repo, err := postgres.NewRecordRepository[Asset](client, table,
		postgres.WithColumns[Asset](assetColumns...),
		postgres.WithOrderBy[Asset]("urn ASC"),
		postgres.WithLimit[Asset](uint64(s.limit)),
	)
	if err != nil {
		spinner.Stop()
		return err
	}

	assets, err := s.searchSource(ctx, repo)
	spinner.Stop()
	if err != nil {
		return err
	}
	return s.printAssets(assets)
}

func (s searcher) searchElasticsearch(ctx context.Context, index string) error {
	spinner := printer.Spin("")
	client, err := initElasticsearch(ctx, s.logger, s.cfg.Elasticsearch)
	if err != nil {
		spinner.Stop()
		return err
	}

	var opts []esStore.SearchRepositoryOption[Asset]
	if s.limit > 0 {
		opts = append(opts, esStore.WithMaxResults[Asset](s.limit))
	}
	repo, err := esStore.NewSearchRepository[Asset](client, index, opts...)
	if err != nil {
		spinner.Stop()
		return err
	}

	assets, err := s.searchSource(ctx, repo)
	spinner.Stop()
	if err != nil {
		return err
	}
	return s.printAssets(assets)
}

func (s searcher) searchSource(ctx context.Context, src search.Source[Asset]) ([]Asset, error) {
	pred, err := search.CompileFor[Asset](s.engine, s.query, s.opts)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("compiled query", "predicate", pred.String())

	return src.Where(ctx, pred)
}

func (s searcher) printAssets(assets []Asset) error {
	out := s.cmd.OutOrStdout()
	if s.outputType == "json" {
		if assets == nil {
			assets = []Asset{}
		}
		return prettyPrint(out, assets)
	}

	report := [][]string{{"URN", "TYPE", "SERVICE", "NAME", "OWNER"}}
	for _, a := range assets {
		row := a.row()
		row[3] = term.Bluef(row[3])
		report = append(report, row)
	}
	printer.Table(out, report)

	fmt.Fprintln(out, term.Cyanf("To view all the data in JSON format, use flag `-o json`"))
	return nil
}
