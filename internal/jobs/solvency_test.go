package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bx-pool/internal/pool"
)

type staticSource []*pool.Snapshot

func (s staticSource) Snapshots(context.Context) ([]*pool.Snapshot, error) { return s, nil }

func snap(name string, balance, blocked uint64) *pool.Snapshot {
	return &pool.Snapshot{
		Name:        name,
		PoolBalance: uint256.NewInt(balance),
		Blocked:     uint256.NewInt(blocked),
		Invested:    uint256.NewInt(0),
		BuyPrice:    uint256.NewInt(100),
		SellPrice:   uint256.NewInt(100),
	}
}

func TestSolvencyCheckFlagsInsolventAssets(t *testing.T) {
	s, err := NewSolvency("@every 1h", staticSource{
		snap("USDT", 1_000, 1_000),
		snap("USDC", 10, 11),
	}, zap.NewNop())
	require.NoError(t, err)

	require.Equal(t, []string{"USDC"}, s.Check(context.Background()))
}

func TestSolvencyRejectsBadSchedule(t *testing.T) {
	_, err := NewSolvency("not a schedule", staticSource{}, zap.NewNop())
	require.Error(t, err)
}

func TestManagerStopsJobsOnCancel(t *testing.T) {
	s, err := NewSolvency("@every 1h", staticSource{}, zap.NewNop())
	require.NoError(t, err)

	m := New()
	m.Register(s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not stop")
	}
}

type countingJob struct {
	started chan string
	name    string
}

func (j countingJob) Start(ctx context.Context) {
	j.started <- j.name
	<-ctx.Done()
}

func TestManagerRunsEveryRegisteredJob(t *testing.T) {
	started := make(chan string, 2)
	m := New()
	m.Register(countingJob{started: started, name: "first"})
	m.Register(countingJob{started: started, name: "second"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()

	got := []string{<-started, <-started}
	require.ElementsMatch(t, []string{"first", "second"}, got)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not wait for its jobs")
	}
}
