package repository

import (
	"context"
	"errors"

	"github.com/roadwatch/warning-service/internal/domain/entity"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// WarningRepository owns the persisted warning rows. It is the only
// component permitted to mutate them; all query results come back ordered by
// id ascending.
type WarningRepository interface {
	// Insert stores a new record and returns the assigned id.
	Insert(ctx context.Context, r *entity.WarningRecord) (int64, error)
	// Update fully overwrites the mutable columns of the record identified
	// by r.ID. The sender column is never touched. Returns ErrNotFound when
	// no row matches.
	Update(ctx context.Context, r *entity.WarningRecord) error
	// IsSender reports whether a record with the given id exists and was
	// originally reported by username.
	IsSender(ctx context.Context, id int64, username string) (bool, error)

	All(ctx context.Context) ([]entity.WarningRecord, error)
	// ByNickname filters on the display nickname, not the authenticated
	// sender. Nicknames are not unique across users, so results may span
	// several distinct reporters.
	ByNickname(ctx context.Context, nickname string) ([]entity.WarningRecord, error)
	// ByTimeRange selects records with start <= sent <= end, inclusive.
	ByTimeRange(ctx context.Context, start, end int64) ([]entity.WarningRecord, error)
	// ByBoundingBox selects records with latitude between downLat and upLat.
	// The longitude bounds are reversed relative to latitude: upLon is the
	// western (smaller) bound and downLon the eastern (larger) one. Callers
	// depend on this convention.
	ByBoundingBox(ctx context.Context, upLat, downLat, upLon, downLon float64) ([]entity.WarningRecord, error)
}
