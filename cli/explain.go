package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/goto/quicksearch/core/search"
	"github.com/goto/quicksearch/core/validator"
	esStore "github.com/goto/quicksearch/internal/store/elasticsearch"
	"github.com/goto/quicksearch/internal/store/postgres"
	"github.com/goto/salt/term"
	"github.com/spf13/cobra"
)

const (
	targetPlan          = "plan"
	targetPredicate     = "predicate"
	targetSQL           = "sql"
	targetElasticsearch = "elasticsearch"
)

func explainCommand(cfg *Config) *cobra.Command {
	var (
		flags  searchFlags
		target string
	)

	cmd := &cobra.Command{
		Use:   "explain <query>",
		Short: "Show how a query is evaluated",
		Long: heredoc.Doc(`
			Show how a query is evaluated without running it.

			The plan is the expression tree used for in-memory records. The predicate
			unrolls it over the fields of an asset, and sql and elasticsearch print
			the filter the store sources send for it.
		`),
		Example: heredoc.Doc(`
			$ quicksearch explain "nasa apollo"
			$ quicksearch explain "nasa apollo" --target predicate --depth 0
			$ quicksearch explain orders --target sql --exact
			$ quicksearch explain orders --target elasticsearch --or
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validator.ValidateOneOf(target, targetPlan, targetPredicate, targetSQL, targetElasticsearch); err != nil {
				return fmt.Errorf("%w: %s", errUnknownTarget, err)
			}

			opts := flags.options(cmd, cfg.Search)
			if err := opts.Validate(); err != nil {
				return err
			}
			query := args[0]
			out := cmd.OutOrStdout()

			if target == targetPlan {
				fmt.Fprintln(out, search.BuildPlan(query, opts).String())
				return nil
			}

			engine, err := search.NewEngine(search.WithPredicateCacheSize(0))
			if err != nil {
				return err
			}
			pred, err := search.CompileFor[Asset](engine, query, opts)
			if err != nil {
				return err
			}

			switch target {
			case targetPredicate:
				fmt.Fprintln(out, pred.String())
			case targetSQL:
				where, whereArgs, err := postgres.WhereClause(pred)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, where)
				for i, arg := range whereArgs {
					fmt.Fprintln(out, term.Cyanf("$%d = %v", i+1, arg))
				}
			case targetElasticsearch:
				q, err := esStore.Translate(pred)
				if err != nil {
					return err
				}
				src, err := q.Source()
				if err != nil {
					return err
				}
				return prettyPrint(out, src)
			default:
				return errUnknownTarget
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&target, "target", "t", targetPlan, "what to print, one of \"plan predicate sql elasticsearch\"")

	return cmd
}
