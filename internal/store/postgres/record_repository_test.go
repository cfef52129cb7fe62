package postgres_test

import (
	"context"
	"testing"

	"github.com/goto/quicksearch/core/search"
	"github.com/goto/quicksearch/internal/store/postgres"
	"github.com/goto/salt/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type RecordRepositoryTestSuite struct {
	suite.Suite
	ctx        context.Context
	client     *postgres.Client
	engine     *search.Engine
	repository *postgres.RecordRepository[assetRow]
	rows       []assetRow
}

func (r *RecordRepositoryTestSuite) SetupSuite() {
	var err error

	logger := log.NewNoop()
	r.client, err = newTestClient(r.T(), logger)
	if err != nil {
		r.T().Fatal(err)
	}

	r.ctx = context.TODO()
	r.engine, err = search.NewEngine()
	if err != nil {
		r.T().Fatal(err)
	}

	r.repository, err = postgres.NewRecordRepository[assetRow](r.client, "assets", postgres.WithOrderBy[assetRow]("urn ASC"))
	if err != nil {
		r.T().Fatal(err)
	}

	r.rows = []assetRow{
		{URN: "urn:apollo", Name: "Apollo", Version: 1.5, Owner: &ownerData{Name: "Nasa", Team: &teamData{Name: "Lunar"}}},
		{URN: "urn:artemis", Name: "Artemis", Version: 2, Owner: &ownerData{Name: "Nasa"}},
		{URN: "urn:mars_express", Name: "Mars Express", Version: 0.1, Owner: &ownerData{Name: "ESA"}},
		{URN: "urn:vostok", Name: "Vostok 100%", Version: 1},
	}
}

func (r *RecordRepositoryTestSuite) SetupTest() {
	err := r.client.ExecQueries(r.ctx, []string{
		"DROP TABLE IF EXISTS assets",
		"CREATE TABLE assets (urn text PRIMARY KEY, name text NOT NULL, version double precision NOT NULL, owner jsonb)",
		`INSERT INTO assets (urn, name, version, owner) VALUES
			('urn:apollo', 'Apollo', 1.5, '{"name": "Nasa", "team": {"name": "Lunar"}}'),
			('urn:artemis', 'Artemis', 2, '{"name": "Nasa"}'),
			('urn:mars_express', 'Mars Express', 0.1, '{"name": "ESA"}'),
			('urn:vostok', 'Vostok 100%', 1, NULL)`,
	})
	if err != nil {
		r.T().Fatal(err)
	}
}

func (r *RecordRepositoryTestSuite) TestWhere() {
	cases := []struct {
		Description string
		Query       string
		Options     search.Options
		Expected    []string
	}{
		{
			Description: "return every row for a blank query",
			Options:     search.DefaultOptions(),
			Expected:    []string{"urn:apollo", "urn:artemis", "urn:mars_express", "urn:vostok"},
		},
		{
			Description: "return rows matching nested json keys",
			Query:       "NASA",
			Options:     search.DefaultOptions(),
			Expected:    []string{"urn:apollo", "urn:artemis"},
		},
		{
			Description: "return rows matching non text columns",
			Query:       "1.5",
			Options:     search.DefaultOptions(),
			Expected:    []string{"urn:apollo"},
		},
		{
			Description: "treat like wildcards literally",
			Query:       "0%",
			Options:     search.DefaultOptions(),
			Expected:    []string{"urn:vostok"},
		},
		{
			Description: "return rows matching underscores literally",
			Query:       "s_e",
			Options:     search.DefaultOptions(),
			Expected:    []string{"urn:mars_express"},
		},
		{
			Description: "return rows matching every term",
			Query:       "nasa apollo",
			Options:     search.DefaultOptions(),
			Expected:    []string{"urn:apollo"},
		},
		{
			Description: "return exact matches only",
			Query:       "artemis",
			Options: func() search.Options {
				opts := search.DefaultOptions()
				opts.ExactMatch = true
				return opts
			}(),
			Expected: []string{"urn:artemis"},
		},
	}

	for _, tc := range cases {
		r.Run(tc.Description, func() {
			pred, err := search.CompileFor[assetRow](r.engine, tc.Query, tc.Options)
			r.Require().NoError(err)

			rows, err := r.repository.Where(r.ctx, pred)
			r.Require().NoError(err)

			var urns []string
			for _, row := range rows {
				urns = append(urns, row.URN)
			}
			r.Equal(tc.Expected, urns)

			inMemory, err := search.Filter(r.engine, r.rows, tc.Query, tc.Options)
			r.Require().NoError(err)
			r.Len(inMemory, len(tc.Expected))
		})
	}
}

func (r *RecordRepositoryTestSuite) TestWhereWithColumns() {
	repo, err := postgres.NewRecordRepository[assetRow](r.client, "assets",
		postgres.WithColumns[assetRow]("urn", "name", "version"),
		postgres.WithOrderBy[assetRow]("urn DESC"),
		postgres.WithLimit[assetRow](2),
	)
	r.Require().NoError(err)

	pred, err := search.CompileFor[assetRow](r.engine, "", search.DefaultOptions())
	r.Require().NoError(err)

	rows, err := repo.Where(r.ctx, pred)
	r.Require().NoError(err)
	r.Require().Len(rows, 2)
	r.Equal("urn:vostok", rows[0].URN)
	r.Nil(rows[0].Owner)
	r.Equal("urn:mars_express", rows[1].URN)
	r.Nil(rows[1].Owner)
}

func (r *RecordRepositoryTestSuite) TestWhereErrors() {
	r.Run("accept untyped predicates", func() {
		rows, err := r.repository.Where(r.ctx, search.True(nil).Not().Not())
		r.NoError(err)
		r.Len(rows, len(r.rows))
	})

	r.Run("return error for a predicate over another type", func() {
		pred, err := search.CompileFor[teamData](r.engine, "x", search.DefaultOptions())
		r.Require().NoError(err)
		_, err = r.repository.Where(r.ctx, pred)
		r.ErrorIs(err, search.ErrPredicateTypeMismatch)
	})

	r.Run("return error for an unknown table", func() {
		repo, err := postgres.NewRecordRepository[assetRow](r.client, "missing_assets")
		r.Require().NoError(err)

		_, err = repo.Where(r.ctx, search.Predicate{})
		r.ErrorContains(err, "undefined table")
	})
}

func TestRecordRepository(t *testing.T) {
	suite.Run(t, &RecordRepositoryTestSuite{})
}

func TestNewRecordRepository(t *testing.T) {
	_, err := postgres.NewRecordRepository[assetRow](nil, "assets")
	assert.Error(t, err)

	_, err = postgres.NewRecordRepository[assetRow](postgres.NewClientWithDB(nil), "")
	assert.Error(t, err)
}
