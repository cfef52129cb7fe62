package statsd

import (
	"fmt"
	"time"

	std "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/goto/salt/log"
)

// Reporter publishes search metrics to statsd. A nil or disabled Reporter
// drops every metric, so callers never need to check.
type Reporter struct {
	client std.ClientInterface
	logger log.Logger
	config Config
}

// Init validates the config and initializes the statsd client.
func Init(logger log.Logger, cfg Config) (*Reporter, error) {
	reporter := &Reporter{logger: logger, config: cfg}
	if !cfg.Enabled {
		logger.Warn("statsd is disabled")
		return reporter, nil
	}

	client, err := std.New(cfg.Address,
		std.WithNamespace(cfg.Prefix+"."),
		std.WithoutTelemetry())
	if err != nil {
		return nil, fmt.Errorf("create statsd client: %w", err)
	}

	reporter.client = client
	return reporter, nil
}

// NewWithClient builds a reporter around an existing client.
func NewWithClient(logger log.Logger, client std.ClientInterface, cfg Config) *Reporter {
	return &Reporter{client: client, logger: logger, config: cfg}
}

// Close flushes and closes the statsd connection.
func (sd *Reporter) Close() error {
	if sd == nil || sd.client == nil {
		return nil
	}
	return sd.client.Close()
}

// Incr returns an increment counter metric.
func (sd *Reporter) Incr(name string) *Metric {
	return sd.metric(name, func(client std.ClientInterface, name string, tags []string, rate float64) error {
		return client.Incr(name, tags, rate)
	})
}

// Timing returns a timer metric.
func (sd *Reporter) Timing(name string, value time.Duration) *Metric {
	return sd.metric(name, func(client std.ClientInterface, name string, tags []string, rate float64) error {
		return client.Timing(name, value, tags, rate)
	})
}

// Histogram returns a histogram metric.
func (sd *Reporter) Histogram(name string, value float64) *Metric {
	return sd.metric(name, func(client std.ClientInterface, name string, tags []string, rate float64) error {
		return client.Histogram(name, value, tags, rate)
	})
}

func (sd *Reporter) metric(name string, publish func(std.ClientInterface, string, []string, float64) error) *Metric {
	if sd == nil || sd.client == nil {
		return nil
	}

	client := sd.client
	return &Metric{
		rate:          sd.config.SamplingRate,
		logger:        sd.logger,
		name:          name,
		withInfluxTag: sd.config.WithInfluxTagFormat,
		publishFunc: func(name string, tags []string, rate float64) error {
			return publish(client, name, tags, rate)
		},
	}
}
