package model

import (
	"strings"

	"github.com/google/uuid"
)

// OrderIDLength is the length of generated order ids.
const OrderIDLength = 8

// IDGenerator produces order ids.
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator derives order ids from the first eight hex digits of a
// random UUID, upper-cased (e.g. "3F2A9C1D").
//
// Thread-safety: UUIDGenerator is stateless and safe for concurrent use.
type UUIDGenerator struct{}

// Generate returns a new 8-character order id.
func (UUIDGenerator) Generate() string {
	return strings.ToUpper(uuid.NewString()[:OrderIDLength])
}
