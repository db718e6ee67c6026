package openslot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// Open marks a cell as bookable. Opening an already-open cell is a no-op.
	Open(ctx context.Context, slot OpenSlot) error
	// Close removes the open mark; returns false when the cell was not open.
	Close(ctx context.Context, slotStart time.Time) (bool, error)
	FindBetween(ctx context.Context, from time.Time, to time.Time) ([]OpenSlot, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (ri *RepositoryImpl) Open(ctx context.Context, slot OpenSlot) error {
	query := `INSERT INTO open_slots (id, slot_start, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (slot_start) DO NOTHING`
	_, err := ri.db.ExecContext(ctx, query, slot.ID, slot.SlotStart, slot.CreatedAt)
	if err != nil {
		err := fmt.Errorf("could not open slot at %s: %w", slot.SlotStart, err)
		log.Error(err)
		return err
	}
	return nil
}

func (ri *RepositoryImpl) Close(ctx context.Context, slotStart time.Time) (bool, error) {
	result, err := ri.db.ExecContext(ctx, `DELETE FROM open_slots WHERE slot_start = $1`, slotStart)
	if err != nil {
		err := fmt.Errorf("could not close slot at %s: %w", slotStart, err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (ri *RepositoryImpl) FindBetween(ctx context.Context, from time.Time, to time.Time) ([]OpenSlot, error) {
	rows, err := ri.db.QueryContext(ctx,
		`SELECT id, slot_start, created_at FROM open_slots WHERE slot_start >= $1 AND slot_start < $2 ORDER BY slot_start`,
		from, to)
	if err != nil {
		err := fmt.Errorf("could not query open slots: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var result []OpenSlot
	for rows.Next() {
		var slot OpenSlot
		if err := rows.Scan(&slot.ID, &slot.SlotStart, &slot.CreatedAt); err != nil {
			err := fmt.Errorf("could not scan open slot row: %w", err)
			log.Error(err)
			return nil, err
		}
		result = append(result, slot)
	}
	return result, rows.Err()
}
