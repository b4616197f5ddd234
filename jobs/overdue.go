// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"library-service/library"
)

// OverdueSweep reports loans that are past their return date.
type OverdueSweep struct {
	checkouts library.CheckoutRepository
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewOverdueSweep(checkouts library.CheckoutRepository, log logrus.FieldLogger) *OverdueSweep {
	return &OverdueSweep{checkouts: checkouts, log: log, now: time.Now}
}

// Run logs every overdue checkout and returns how many there were.
func (s *OverdueSweep) Run(ctx context.Context) (int, error) {
	now := s.now()
	overdue, err := s.checkouts.FindCheckoutsDueBefore(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, c := range overdue {
		s.log.WithFields(logrus.Fields{
			"user":         c.UserEmail,
			"book":         c.BookID,
			"due":          c.ReturnDate.Format("2006-01-02"),
			"days_overdue": c.DaysOverdue(now),
		}).Warn("loan overdue")
	}
	s.log.WithField("count", len(overdue)).Info("overdue sweep finished")
	return len(overdue), nil
}

// Schedule registers the sweep on a new cron scheduler. The caller starts
// and stops it.
func Schedule(spec string, sweep *OverdueSweep, log logrus.FieldLogger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := sweep.Run(context.Background()); err != nil {
			log.WithError(err).Error("overdue sweep failed")
		}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
