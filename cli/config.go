package cli

import (
	"errors"

	"github.com/MakeNowJust/heredoc"
	"github.com/goto/quicksearch/core/search"
	esStore "github.com/goto/quicksearch/internal/store/elasticsearch"
	"github.com/goto/quicksearch/internal/store/postgres"
	"github.com/goto/quicksearch/pkg/statsd"
	"github.com/goto/salt/config"
	"github.com/mcuadros/go-defaults"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

const configFlag = "config"

func configCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config <command>",
		Short: "Manage quicksearch configuration",
		Example: heredoc.Doc(`
			$ quicksearch config list`),
	}

	cmd.AddCommand(configListCommand(cfg))

	return cmd
}

func configListCommand(cfg *Config) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "list",
		Short: "List configuration settings",
		Example: heredoc.Doc(`
			$ quicksearch config list
		`),
		Annotations: map[string]string{
			"group": "core",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return yaml.NewEncoder(cmd.OutOrStdout()).Encode(*cfg)
		},
	}
	return cmd
}

type Config struct {
	// Log
	LogLevel string `yaml:"log_level" mapstructure:"log_level" default:"info"`

	// Search defaults, overridden per command by flags
	Search             search.Options `yaml:"search" mapstructure:"search"`
	PredicateCacheSize int            `yaml:"predicate_cache_size" mapstructure:"predicate_cache_size" default:"256"`

	// StatsD
	StatsD statsd.Config `yaml:"statsd" mapstructure:"statsd"`

	// Elasticsearch
	Elasticsearch esStore.Config `yaml:"elasticsearch" mapstructure:"elasticsearch"`

	// Database
	DB postgres.Config `yaml:"db" mapstructure:"db"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	err := config.NewLoader(
		config.WithPath("./"),
		config.WithName("quicksearch.yaml"),
		config.WithEnvKeyReplacer(".", "_"),
		config.WithEnvPrefix("QUICKSEARCH"),
	).Load(&cfg)
	if err != nil {
		if errors.As(err, &config.ConfigFileNotFoundError{}) {
			defaults.SetDefaults(&cfg)
			return &cfg, ErrConfigNotFound
		}
		return &cfg, err
	}
	return &cfg, nil
}

func LoadConfigFromFlag(cfgFile string, cfg *Config) error {
	var opts []config.LoaderOption
	opts = append(opts,
		config.WithFile(cfgFile),
		config.WithEnvKeyReplacer(".", "_"),
		config.WithEnvPrefix("QUICKSEARCH"),
	)

	return config.NewLoader(opts...).Load(cfg)
}
