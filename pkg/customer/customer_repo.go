package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// UpsertOnBooking records a booking contact: inserts the customer at
	// first contact, or refreshes name and last-reserved time on a repeat
	// visit. The ticket balance is never touched by the upsert.
	UpsertOnBooking(ctx context.Context, uid string, name string, reservedAt time.Time) error
	// AdjustTickets applies a signed delta to the ticket balance as a single
	// server-side increment, so concurrent admin edits never lose updates.
	AdjustTickets(ctx context.Context, uid string, delta int) (bool, error)
	FindAll(ctx context.Context) ([]Customer, error)
	FindByUID(ctx context.Context, uid string) (*Customer, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (ri *RepositoryImpl) UpsertOnBooking(ctx context.Context, uid string, name string, reservedAt time.Time) error {
	query := `INSERT INTO customers (uid, name, last_reserved_at, tickets)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (uid) DO UPDATE SET name = $2, last_reserved_at = $3`

	_, err := ri.db.ExecContext(ctx, query, uid, name, reservedAt)
	if err != nil {
		err := fmt.Errorf("could not upsert customer %s: %w", uid, err)
		log.Error(err)
		return err
	}
	return nil
}

func (ri *RepositoryImpl) AdjustTickets(ctx context.Context, uid string, delta int) (bool, error) {
	result, err := ri.db.ExecContext(ctx,
		`UPDATE customers SET tickets = tickets + $1 WHERE uid = $2`, delta, uid)
	if err != nil {
		err := fmt.Errorf("could not adjust tickets for customer %s: %w", uid, err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (ri *RepositoryImpl) FindAll(ctx context.Context) ([]Customer, error) {
	rows, err := ri.db.QueryContext(ctx,
		`SELECT uid, name, last_reserved_at, tickets FROM customers ORDER BY name`)
	if err != nil {
		err := fmt.Errorf("could not query customers: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var result []Customer
	for rows.Next() {
		c, err := scanCustomer(rows.Scan)
		if err != nil {
			err := fmt.Errorf("could not scan customer row: %w", err)
			log.Error(err)
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (ri *RepositoryImpl) FindByUID(ctx context.Context, uid string) (*Customer, error) {
	row := ri.db.QueryRowContext(ctx,
		`SELECT uid, name, last_reserved_at, tickets FROM customers WHERE uid = $1`, uid)
	c, err := scanCustomer(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		err := fmt.Errorf("could not read customer %s: %w", uid, err)
		log.Error(err)
		return nil, err
	}
	return &c, nil
}

func scanCustomer(scan func(dest ...any) error) (Customer, error) {
	var c Customer
	var lastReservedAt sql.NullTime
	if err := scan(&c.UID, &c.Name, &lastReservedAt, &c.Tickets); err != nil {
		return Customer{}, err
	}
	if lastReservedAt.Valid {
		c.LastReservedAt = lastReservedAt.Time
	}
	return c, nil
}
