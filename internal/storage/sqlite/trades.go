package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hetulpatel/spreadarb/internal/models"
)

// TradeRow is a journal entry as stored.
type TradeRow struct {
	ID             int64
	CycleID        string
	Pair           string
	BuyVenue       string
	SellVenue      string
	ReferencePrice float64
	Amount         float64
	Outcome        models.Outcome
	Unhedged       bool
	Error          string
}

func (s *Store) Name() string {
	return "sqlite"
}

// Record journals cycles that reached the executor; other cycles are ignored.
func (s *Store) Record(ctx context.Context, report models.CycleReport) error {
	if !report.Traded() {
		return nil
	}
	return s.InsertTrade(ctx, report)
}

// InsertTrade stores the outcome of an executed (or attempted) trade pair.
func (s *Store) InsertTrade(ctx context.Context, report models.CycleReport) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialized")
	}
	if report.Signal == nil {
		return fmt.Errorf("cycle %s has no signal", report.CycleID)
	}
	pricesJSON, err := json.Marshal(report.Observations)
	if err != nil {
		return fmt.Errorf("marshal prices: %w", err)
	}

	query := `
INSERT INTO trades (
	cycle_id, pair, buy_venue, sell_venue, reference_price, sell_price, margin,
	amount, outcome, unhedged, error, prices_json, started_at, finished_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	sig := report.Signal
	_, err = s.db.ExecContext(
		ctx,
		query,
		report.CycleID,
		report.Pair,
		string(sig.BuyVenue),
		string(sig.SellVenue),
		sig.ReferencePrice,
		sig.SellPrice,
		sig.Margin,
		report.Amount,
		string(report.Outcome),
		report.Unhedged,
		report.Error,
		string(pricesJSON),
		formatTime(report.StartedAt),
		formatTime(report.FinishedAt),
	)
	return err
}

// ListTrades returns the newest trades for pair, newest first.
func (s *Store) ListTrades(ctx context.Context, pair string, limit int) ([]TradeRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, cycle_id, pair, buy_venue, sell_venue, reference_price, amount, outcome, unhedged, COALESCE(error, '')
FROM trades WHERE pair = ? ORDER BY id DESC LIMIT ?`, pair, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRow
	for rows.Next() {
		var row TradeRow
		var outcome string
		if err := rows.Scan(&row.ID, &row.CycleID, &row.Pair, &row.BuyVenue, &row.SellVenue,
			&row.ReferencePrice, &row.Amount, &outcome, &row.Unhedged, &row.Error); err != nil {
			return nil, err
		}
		row.Outcome = models.Outcome(outcome)
		out = append(out, row)
	}
	return out, rows.Err()
}

// CountUnhedged returns how many journalled trades left open inventory.
func (s *Store) CountUnhedged(ctx context.Context, pair string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trades WHERE pair = ? AND unhedged = 1`, pair).Scan(&n)
	return n, err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
