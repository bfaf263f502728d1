package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/susu3304/taru/internal/barrel"
)

// Settlement is an archived closed session. Rows are write-once.
type Settlement struct {
	ID            int64              `json:"id"`
	Label         string             `json:"label"`
	Payer         string             `json:"payer"`
	UnitPrice     float64            `json:"unit_price"`
	NominalVolume float64            `json:"nominal_volume"`
	PricePerUnit  float64            `json:"price_per_unit"`
	Consumed      map[string]float64 `json:"consumed"`
	Owed          map[string]float64 `json:"owed"`
	OpenedAt      time.Time          `json:"opened_at"`
	ClosedAt      time.Time          `json:"closed_at"`
}

func settlementFromRecord(rec barrel.HistoryRecord) Settlement {
	return Settlement{
		Label:         rec.Label,
		Payer:         rec.Payer,
		UnitPrice:     rec.UnitPrice,
		NominalVolume: rec.NominalVolume,
		PricePerUnit:  rec.EffectivePricePerUnit,
		Consumed:      rec.Consumed,
		Owed:          rec.Owed,
		OpenedAt:      rec.OpenedAt,
		ClosedAt:      rec.ClosedAt,
	}
}

// ArchiveSettlement implements barrel.Archiver.
func (db *DB) ArchiveSettlement(ctx context.Context, rec barrel.HistoryRecord) error {
	if rec.Open() {
		return fmt.Errorf("refusing to archive open session %q", rec.Label)
	}
	s := settlementFromRecord(rec)

	consumed, err := json.Marshal(s.Consumed)
	if err != nil {
		return fmt.Errorf("encode consumed: %w", err)
	}
	owed, err := json.Marshal(s.Owed)
	if err != nil {
		return fmt.Errorf("encode owed: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO barrel_settlements (label, payer, unit_price, nominal_volume, price_per_unit, consumed, owed, opened_at, closed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.Label, s.Payer, s.UnitPrice, s.NominalVolume, s.PricePerUnit, consumed, owed, s.OpenedAt, s.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("insert settlement: %w", err)
	}
	return nil
}

// ListSettlements returns the most recently closed settlements first.
func (db *DB) ListSettlements(ctx context.Context, limit int) ([]Settlement, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, label, payer, unit_price, nominal_volume, price_per_unit, consumed, owed, opened_at, closed_at
		 FROM barrel_settlements
		 ORDER BY closed_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Settlement
	for rows.Next() {
		var s Settlement
		var consumed, owed []byte
		if err := rows.Scan(&s.ID, &s.Label, &s.Payer, &s.UnitPrice, &s.NominalVolume, &s.PricePerUnit,
			&consumed, &owed, &s.OpenedAt, &s.ClosedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(consumed, &s.Consumed); err != nil {
			return nil, fmt.Errorf("decode consumed for settlement %d: %w", s.ID, err)
		}
		if err := json.Unmarshal(owed, &s.Owed); err != nil {
			return nil, fmt.Errorf("decode owed for settlement %d: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
