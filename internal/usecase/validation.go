package usecase

import (
	"strings"

	"github.com/riskibarqy/live-cricket/internal/platform/id"
)

// AllMatchesID selects every tracked fixture instead of a single one.
const AllMatchesID = "0"

// ValidateMatchID accepts AllMatchesID or a well-formed fixture id.
func ValidateMatchID(matchID string) error {
	switch {
	case strings.TrimSpace(matchID) == "":
		return ErrMatchIDRequired
	case matchID == AllMatchesID:
		return nil
	case !id.IsValid(matchID):
		return ErrInvalidMatchID
	}
	return nil
}
