package entity

import (
	"errors"
	"fmt"
)

// DangerType is the fixed category of a reported hazard.
type DangerType string

const (
	DangerDeer     DangerType = "Deer"
	DangerReindeer DangerType = "Reindeer"
	DangerMoose    DangerType = "Moose"
	DangerOther    DangerType = "Other"
)

var ErrInvalidDangerType = errors.New("invalid danger type")

// ParseDangerType validates a raw danger type value. Matching is
// case-sensitive; anything outside the four known categories is rejected.
func ParseDangerType(s string) (DangerType, error) {
	switch DangerType(s) {
	case DangerDeer, DangerReindeer, DangerMoose, DangerOther:
		return DangerType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDangerType, s)
}
