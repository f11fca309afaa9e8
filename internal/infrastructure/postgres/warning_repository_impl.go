package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/roadwatch/warning-service/internal/domain/entity"
	"github.com/roadwatch/warning-service/internal/domain/repository"
)

const messageColumns = `id, nickname, latitude, longitude, sent, dangertype, areacode, phonenumber, updatereason, modified, sender`

type WarningRepository struct {
	db DB
}

func NewWarningRepository(db DB) *WarningRepository {
	return &WarningRepository{db: db}
}

func (r *WarningRepository) Insert(ctx context.Context, w *entity.WarningRecord) (int64, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO messages (nickname, latitude, longitude, sent, dangertype, areacode, phonenumber, sender)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, w.Nickname, w.Latitude, w.Longitude, w.Sent, w.DangerType, w.AreaCode, w.PhoneNumber, w.Sender)

	if err := row.Scan(&w.ID); err != nil {
		return 0, err
	}
	return w.ID, nil
}

// Update overwrites every mutable column. The sender column stays untouched;
// ownership must already have been established through IsSender.
func (r *WarningRepository) Update(ctx context.Context, w *entity.WarningRecord) error {
	res, err := r.db.Exec(ctx, `
		UPDATE messages
		SET nickname = $1, latitude = $2, longitude = $3, sent = $4, dangertype = $5,
		    areacode = $6, phonenumber = $7, updatereason = $8, modified = $9
		WHERE id = $10
	`, w.Nickname, w.Latitude, w.Longitude, w.Sent, w.DangerType,
		w.AreaCode, w.PhoneNumber, w.UpdateReason, w.Modified, w.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *WarningRepository) IsSender(ctx context.Context, id int64, username string) (bool, error) {
	var sender string
	row := r.db.QueryRow(ctx, `SELECT sender FROM messages WHERE id = $1`, id)
	if err := row.Scan(&sender); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return sender == username, nil
}

func (r *WarningRepository) All(ctx context.Context) ([]entity.WarningRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT `+messageColumns+` FROM messages ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func (r *WarningRepository) ByNickname(ctx context.Context, nickname string) ([]entity.WarningRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT `+messageColumns+` FROM messages WHERE nickname = $1 ORDER BY id`, nickname)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func (r *WarningRepository) ByTimeRange(ctx context.Context, start, end int64) ([]entity.WarningRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT `+messageColumns+` FROM messages WHERE sent >= $1 AND sent <= $2 ORDER BY id`, start, end)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

// ByBoundingBox keeps the caller-side bound convention: up/down latitude are
// north/south, but up longitude is the western (smaller) bound and down
// longitude the eastern one.
func (r *WarningRepository) ByBoundingBox(ctx context.Context, upLat, downLat, upLon, downLon float64) ([]entity.WarningRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE latitude <= $1 AND latitude >= $2 AND longitude >= $3 AND longitude <= $4
		ORDER BY id
	`, upLat, downLat, upLon, downLon)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]entity.WarningRecord, error) {
	defer rows.Close()

	out := []entity.WarningRecord{}
	for rows.Next() {
		var w entity.WarningRecord
		if err := rows.Scan(&w.ID, &w.Nickname, &w.Latitude, &w.Longitude, &w.Sent, &w.DangerType,
			&w.AreaCode, &w.PhoneNumber, &w.UpdateReason, &w.Modified, &w.Sender); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ repository.WarningRepository = (*WarningRepository)(nil)
