package statsd_test

import (
	"errors"
	"testing"
	"time"

	std "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/goto/quicksearch/pkg/statsd"
	"github.com/goto/salt/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type statsdClient struct {
	std.NoOpClient
	mock.Mock
}

func (c *statsdClient) Incr(name string, tags []string, rate float64) error {
	args := c.Called(name, tags, rate)
	return args.Error(0)
}

func (c *statsdClient) Timing(name string, value time.Duration, tags []string, rate float64) error {
	args := c.Called(name, value, tags, rate)
	return args.Error(0)
}

func (c *statsdClient) Histogram(name string, value float64, tags []string, rate float64) error {
	args := c.Called(name, value, tags, rate)
	return args.Error(0)
}

func TestReporter(t *testing.T) {
	logger := log.NewNoop()

	t.Run("Timing", func(t *testing.T) {
		client := new(statsdClient)
		client.On("Timing", "session.search", 100*time.Millisecond, []string{"source:memory", "success:true"}, 1.0).Return(nil).Once()

		reporter := statsd.NewWithClient(logger, client, statsd.Config{SamplingRate: 1})
		reporter.Timing("session.search", 100*time.Millisecond).Tag("source", "memory").Success().Publish()

		client.AssertExpectations(t)
	})

	t.Run("Incr", func(t *testing.T) {
		client := new(statsdClient)
		client.On("Incr", "session.compile", []string{"success:false"}, 0.5).Return(nil).Once()

		reporter := statsd.NewWithClient(logger, client, statsd.Config{SamplingRate: 0.5})
		reporter.Incr("session.compile").Failure(errors.New("some error")).Publish()

		client.AssertExpectations(t)
	})

	t.Run("Histogram", func(t *testing.T) {
		client := new(statsdClient)
		client.On("Histogram", "session.results", 12.0, []string{}, 1.0).Return(nil).Once()

		reporter := statsd.NewWithClient(logger, client, statsd.Config{SamplingRate: 1})
		reporter.Histogram("session.results", 12).Publish()

		client.AssertExpectations(t)
	})

	t.Run("InfluxTagFormat", func(t *testing.T) {
		client := new(statsdClient)
		client.On("Incr", "cli.search,source=file,success=true", []string(nil), 1.0).Return(nil).Once()

		reporter := statsd.NewWithClient(logger, client, statsd.Config{SamplingRate: 1, WithInfluxTagFormat: true})
		reporter.Incr("cli.search").Success().Tag("source", "file").Publish()

		client.AssertExpectations(t)
	})

	t.Run("PublishError", func(t *testing.T) {
		client := new(statsdClient)
		client.On("Incr", "session.search", []string{}, 1.0).Return(errors.New("connection refused")).Once()

		reporter := statsd.NewWithClient(logger, client, statsd.Config{SamplingRate: 1})
		assert.NotPanics(t, func() {
			reporter.Incr("session.search").Publish()
		})

		client.AssertExpectations(t)
	})
}

func TestDisabledReporter(t *testing.T) {
	reporter, err := statsd.Init(log.NewNoop(), statsd.Config{Enabled: false})
	require.NoError(t, err)

	assert.Nil(t, reporter.Incr("session.search"))
	assert.Nil(t, reporter.Timing("session.search", time.Second))
	assert.NotPanics(t, func() {
		reporter.Timing("session.search", time.Second).Tag("source", "memory").Success().Publish()
	})
	assert.NoError(t, reporter.Close())

	var nilReporter *statsd.Reporter
	assert.Nil(t, nilReporter.Histogram("session.results", 1))
	assert.NoError(t, nilReporter.Close())
}
