package id

import (
	"strings"

	"github.com/google/uuid"
)

// UUIDGenerator hands out random v4 identifiers.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// NewGroupIDs returns an order group id and a shipping id that share one random suffix,
// e.g. GRP-3F2A9C1D4B7E and SHIP-3F2A9C1D4B7E.
func (UUIDGenerator) NewGroupIDs() (groupID, shippingID string) {
	u := uuid.New()
	suffix := strings.ToUpper(strings.ReplaceAll(u.String(), "-", "")[:12])
	return "GRP-" + suffix, "SHIP-" + suffix
}
