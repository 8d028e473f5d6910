package jobs

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// CatalogFetcher is the part of the catalog pipeline the refresher drives.
type CatalogFetcher interface {
	FetchProducts(ctx context.Context) []domain.Product
}

// Scheduler periodically re-fetches the catalog so the offline cache stays
// close to the backend even when nobody browses.
type Scheduler struct {
	sched   *cron.Cron
	catalog CatalogFetcher
	timeout time.Duration
	log     *logrus.Logger
}

func NewScheduler(catalog CatalogFetcher, timeout time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		sched:   cron.New(cron.WithParser(cronParser), cron.WithChain(cron.Recover(cron.PrintfLogger(logger)))),
		catalog: catalog,
		timeout: timeout,
		log:     logger,
	}
}

// ScheduleCatalogRefresh registers the refresh job. An empty schedule disables it.
func (s *Scheduler) ScheduleCatalogRefresh(schedule string) error {
	if schedule == "" {
		s.log.Info("Jobs: Catalog refresh disabled")
		return nil
	}
	if _, err := s.sched.AddFunc(schedule, s.RefreshCatalog); err != nil {
		return fmt.Errorf("invalid catalog refresh schedule %q: %w", schedule, err)
	}
	s.log.Infof("Jobs: Catalog refresh scheduled (%s)", schedule)
	return nil
}

func (s *Scheduler) RefreshCatalog() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	products := s.catalog.FetchProducts(ctx)
	s.log.Debugf("Jobs: Catalog refresh finished with %d products", len(products))
}

func (s *Scheduler) Start() {
	s.sched.Start()
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.sched.Stop().Done()
}
