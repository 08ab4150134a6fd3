package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"bx-pool/internal/monitoring"
	"bx-pool/internal/pool"
)

type SnapshotSource interface {
	Snapshots(ctx context.Context) ([]*pool.Snapshot, error)
}

// Solvency checks on a cron schedule that every asset holds at least its
// blocked amount, and refreshes the pool gauges.
type Solvency struct {
	cron   *cron.Cron
	source SnapshotSource
	log    *zap.Logger
}

func NewSolvency(spec string, source SnapshotSource, log *zap.Logger) (*Solvency, error) {
	s := &Solvency{
		cron:   cron.New(cron.WithSeconds()),
		source: source,
		log:    log.Named("solvency"),
	}
	if _, err := s.cron.AddFunc(spec, func() { s.Check(context.Background()) }); err != nil {
		return nil, fmt.Errorf("register solvency check: %w", err)
	}
	return s, nil
}

func (s *Solvency) Start(ctx context.Context) {
	s.cron.Start()
	s.log.Info("solvency monitor started")
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info("solvency monitor stopped")
}

// Check returns the names of insolvent assets.
func (s *Solvency) Check(ctx context.Context) []string {
	snaps, err := s.source.Snapshots(ctx)
	if err != nil {
		s.log.Warn("snapshot failed", zap.Error(err))
		return nil
	}
	var bad []string
	for _, snap := range snaps {
		monitoring.BlockedAmount.WithLabelValues(snap.Name).Set(snap.Blocked.Float64())
		monitoring.InvestedAmount.WithLabelValues(snap.Name).Set(snap.Invested.Float64())
		monitoring.SharePrice.WithLabelValues(snap.Name, "buy").Set(snap.BuyPrice.Float64())
		monitoring.SharePrice.WithLabelValues(snap.Name, "sell").Set(snap.SellPrice.Float64())

		if snap.Solvent() {
			continue
		}
		bad = append(bad, snap.Name)
		monitoring.SolvencyViolations.WithLabelValues(snap.Name).Inc()
		s.log.Error("pool insolvent",
			zap.String("asset", snap.Name),
			zap.String("blocked", snap.Blocked.Dec()),
			zap.String("balance", snap.PoolBalance.Dec()),
		)
	}
	return bad
}
