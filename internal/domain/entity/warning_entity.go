package entity

import (
	"encoding/json"

	"github.com/roadwatch/warning-service/pkg/timeutil"
)

// WarningRecord is a persisted hazard sighting.
//
// Sent and Modified are UTC epoch milliseconds internally and cross the wire
// as formatted timestamp strings. Sender is the authenticated username of
// the original reporter; it is immutable and is the sole authorization key
// for updates. Nickname is a user-chosen display name and may differ from
// the login identity.
type WarningRecord struct {
	ID           int64
	Nickname     string
	Latitude     float64
	Longitude    float64
	Sent         int64
	DangerType   DangerType
	AreaCode     *string
	PhoneNumber  *string
	UpdateReason *string
	Modified     *int64
	Sender       string

	// Weather is a transient query-time annotation, never persisted.
	Weather string
}

// Updated reports whether the record has been edited since submission.
func (r *WarningRecord) Updated() bool {
	return r.UpdateReason != nil || r.Modified != nil
}

// MarshalJSON shapes the record for transport: timestamps are formatted, the
// sender is withheld, and optional fields are omitted entirely (not null)
// when absent.
func (r WarningRecord) MarshalJSON() ([]byte, error) {
	var modified *string
	if r.Modified != nil {
		s := timeutil.FormatTimestamp(*r.Modified)
		modified = &s
	}
	return json.Marshal(struct {
		ID           int64      `json:"id"`
		Nickname     string     `json:"nickname"`
		Latitude     float64    `json:"latitude"`
		Longitude    float64    `json:"longitude"`
		Sent         string     `json:"sent"`
		DangerType   DangerType `json:"dangertype"`
		AreaCode     *string    `json:"areacode,omitempty"`
		PhoneNumber  *string    `json:"phonenumber,omitempty"`
		UpdateReason *string    `json:"updatereason,omitempty"`
		Modified     *string    `json:"modified,omitempty"`
		Weather      string     `json:"weather,omitempty"`
	}{
		ID:           r.ID,
		Nickname:     r.Nickname,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Sent:         timeutil.FormatTimestamp(r.Sent),
		DangerType:   r.DangerType,
		AreaCode:     r.AreaCode,
		PhoneNumber:  r.PhoneNumber,
		UpdateReason: r.UpdateReason,
		Modified:     modified,
		Weather:      r.Weather,
	})
}
