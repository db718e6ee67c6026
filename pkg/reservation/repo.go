package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lessonbook/lessonbook/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

// ErrConflict is returned by StoreChecked when the requested span is no longer
// free at write time.
var ErrConflict = errors.New("the requested slot is already taken")

// conflictLookback bounds how far before the candidate start an existing
// reservation may begin and still reach into it. No block comes close to this.
const conflictLookback = 6 * time.Hour

type Repository interface {
	// Store persists a reservation without any availability check. Imports
	// and rest blocks use it; customer bookings go through StoreChecked.
	Store(ctx context.Context, r Reservation) (Reservation, error)
	// StoreChecked re-reads the surrounding reservations inside a transaction
	// and inserts only when the span is still free under the category's
	// capacity rule. Returns ErrConflict otherwise.
	StoreChecked(ctx context.Context, r Reservation) (Reservation, error)
	FindAll(ctx context.Context) ([]Reservation, error)
	FindBetween(ctx context.Context, from time.Time, to time.Time) ([]Reservation, error)
	FindByID(ctx context.Context, id string) (*Reservation, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const insertQuery = `INSERT INTO reservations (
			id,
			customer_uid,
			customer_name,
			lesson_type,
			menu_detail,
			duration,
			date,
			created_at,
			is_external
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const selectColumns = `id, customer_uid, customer_name, lesson_type, menu_detail, duration, date, created_at, is_external`

func (ri *RepositoryImpl) Store(ctx context.Context, r Reservation) (Reservation, error) {
	_, err := ri.db.ExecContext(ctx, insertQuery,
		r.ID,
		r.CustomerUID,
		r.CustomerName,
		string(r.Category),
		r.MenuDetail,
		r.Minutes,
		r.StartTime,
		r.CreatedAt,
		r.External,
	)
	if err != nil {
		err := fmt.Errorf("could not store reservation: %w", err)
		log.Error(err)
		return Reservation{}, err
	}
	return r, nil
}

func (ri *RepositoryImpl) StoreChecked(ctx context.Context, r Reservation) (Reservation, error) {
	tx, err := ri.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return Reservation{}, err
	}
	defer tx.Rollback()

	iv := r.Interval()
	rows, err := tx.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM reservations WHERE date >= $1 AND date < $2`,
		iv.Start.Add(-conflictLookback), iv.End,
	)
	if err != nil {
		err := fmt.Errorf("could not read existing reservations: %w", err)
		log.Error(err)
		return Reservation{}, err
	}
	existing, err := scanReservations(rows)
	if err != nil {
		return Reservation{}, err
	}

	if conflicts(r, existing) {
		log.Infof("write-time conflict for %s at %s", r.Category, r.StartTime)
		return Reservation{}, ErrConflict
	}

	_, err = tx.ExecContext(ctx, insertQuery,
		r.ID,
		r.CustomerUID,
		r.CustomerName,
		string(r.Category),
		r.MenuDetail,
		r.Minutes,
		r.StartTime,
		r.CreatedAt,
		r.External,
	)
	if err != nil {
		err := fmt.Errorf("could not store reservation: %w", err)
		log.Error(err)
		return Reservation{}, err
	}
	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit reservation: %w", err)
		log.Error(err)
		return Reservation{}, err
	}
	return r, nil
}

// conflicts applies the capacity rule at write time: a group booking shares
// its span with other group bookings up to the group limit; everything else
// tolerates no overlap at all.
func conflicts(candidate Reservation, existing []Reservation) bool {
	iv := candidate.Interval()
	if candidate.Category != schedule.Group {
		return ConflictsAny(existing, iv)
	}
	seats, closed := GroupOccupancy(existing, iv)
	return closed || seats >= schedule.GroupLimit
}

func (ri *RepositoryImpl) FindAll(ctx context.Context) ([]Reservation, error) {
	rows, err := ri.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM reservations ORDER BY date`)
	if err != nil {
		err := fmt.Errorf("could not query reservations: %w", err)
		log.Error(err)
		return nil, err
	}
	return scanReservations(rows)
}

func (ri *RepositoryImpl) FindBetween(ctx context.Context, from time.Time, to time.Time) ([]Reservation, error) {
	rows, err := ri.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM reservations WHERE date >= $1 AND date < $2 ORDER BY date`,
		from.Add(-conflictLookback), to,
	)
	if err != nil {
		err := fmt.Errorf("could not query reservations: %w", err)
		log.Error(err)
		return nil, err
	}
	all, err := scanReservations(rows)
	if err != nil {
		return nil, err
	}
	// The lookback pulls in earlier rows so block spans reaching into the
	// window are seen; rows that end before the window starts are noise.
	window := schedule.Interval{Start: from, End: to}
	result := make([]Reservation, 0, len(all))
	for _, r := range all {
		if r.Interval().Overlaps(window) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (ri *RepositoryImpl) FindByID(ctx context.Context, id string) (*Reservation, error) {
	row := ri.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM reservations WHERE id = $1`, id)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		err := fmt.Errorf("could not read reservation %s: %w", id, err)
		log.Error(err)
		return nil, err
	}
	r, ok := FromRecord(rec)
	if !ok {
		log.Warnf("reservation %s has no usable start time", id)
		return nil, nil
	}
	return &r, nil
}

func (ri *RepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	result, err := ri.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not delete reservation %s: %w", id, err)
		log.Error(err)
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanReservations(rows *sql.Rows) ([]Reservation, error) {
	defer rows.Close()
	var result []Reservation
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			err := fmt.Errorf("could not scan reservation row: %w", err)
			log.Error(err)
			return nil, err
		}
		r, ok := FromRecord(rec)
		if !ok {
			// One broken record must not take the whole calendar down.
			log.Warnf("skipping reservation %s: no usable start time", rec.ID)
			continue
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func scanRecord(scan func(dest ...any) error) (Record, error) {
	var rec Record
	var uid sql.NullString
	var menuDetail sql.NullString
	var minutes sql.NullInt64
	var startTime sql.NullTime
	err := scan(&rec.ID, &uid, &rec.CustomerName, &rec.LessonType, &menuDetail, &minutes, &startTime, &rec.CreatedAt, &rec.External)
	if err != nil {
		return Record{}, err
	}
	rec.CustomerUID = uid.String
	rec.MenuDetail = menuDetail.String
	if minutes.Valid {
		rec.Minutes = int(minutes.Int64)
		rec.HasMinutes = true
	}
	if startTime.Valid {
		rec.StartTime = startTime.Time
	}
	return rec, nil
}
