package jobs

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct{ calls atomic.Int32 }

func (c *countingFetcher) FetchProducts(context.Context) []domain.Product {
	c.calls.Add(1)
	return domain.SeedProducts()
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestScheduleCatalogRefresh(t *testing.T) {
	fetcher := &countingFetcher{}
	s := NewScheduler(fetcher, time.Second, quietLogger())

	assert.NoError(t, s.ScheduleCatalogRefresh(""))
	assert.Error(t, s.ScheduleCatalogRefresh("not a schedule"))
	assert.NoError(t, s.ScheduleCatalogRefresh("@every 5m"))
	assert.NoError(t, s.ScheduleCatalogRefresh("*/10 * * * * *"))
}

func TestRefreshCatalogFetches(t *testing.T) {
	fetcher := &countingFetcher{}
	s := NewScheduler(fetcher, time.Second, quietLogger())

	s.RefreshCatalog()
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

type panickingFetcher struct{}

func (panickingFetcher) FetchProducts(context.Context) []domain.Product {
	panic("backend exploded")
}

func TestJobPanicIsRecoveredIntoLogger(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	s := NewScheduler(panickingFetcher{}, time.Second, logger)
	require.NoError(t, s.ScheduleCatalogRefresh("@every 1s"))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		for _, entry := range hook.AllEntries() {
			if strings.Contains(entry.Message, "backend exploded") {
				return true
			}
		}
		return false
	}, 5*time.Second, 50*time.Millisecond)
}
