package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bx-pool/internal/event"
)

type Entry struct {
	Kind    string
	AssetID int
	Account string
	Amount  string
	BetID   string
	At      time.Time
}

// Journal appends pool movements to the ledger table. It is a record for
// indexing and reconciliation, not the source of truth.
type Journal struct {
	db *sql.DB
}

func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) Record(ctx context.Context, e Entry) (string, error) {
	ref := uuid.New().String()
	ts := e.At
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := j.db.ExecContext(ctx, `
	INSERT INTO ledger(ref,kind,asset_id,account,amount,bet_id,ts)
	VALUES (?,?,?,?,?,?,?)
	`, ref, e.Kind, e.AssetID, e.Account, e.Amount, e.BetID, ts.Unix())
	if err != nil {
		return "", err
	}
	return ref, nil
}

func (j *Journal) ByAsset(ctx context.Context, assetID int, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
	SELECT kind, asset_id, account, amount, bet_id, ts FROM ledger
	WHERE asset_id=? ORDER BY id DESC LIMIT ?
	`, assetID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.Kind, &e.AssetID, &e.Account, &e.Amount, &e.BetID, &ts); err != nil {
			return nil, err
		}
		e.At = time.Unix(ts, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Subscribe journals every pool event published on bus.
func (j *Journal) Subscribe(bus *event.Bus, log *zap.Logger) {
	bus.SubscribeAll(func(payload interface{}) {
		p, ok := payload.(*event.Payload)
		if !ok {
			return
		}
		_, err := j.Record(context.Background(), Entry{
			Kind:    p.Name,
			AssetID: p.AssetID,
			Account: p.Account,
			Amount:  p.Amount,
			BetID:   p.BetID,
			At:      p.Timestamp,
		})
		if err != nil {
			log.Error("journal write failed", zap.String("event", p.Name), zap.Error(err))
		}
	})
}
