package domain

import (
	"strings"

	"github.com/google/uuid"
)

type SortDir int8

const (
	SortDirAsc  = 1
	SortDirDesc = -1
)

// Currency is an upper case currency symbol, e.g. ETH, USDT
type Currency string

func (c Currency) Normalize() Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(string(c))))
}

func (c Currency) IsEmpty() bool {
	return len(strings.TrimSpace(string(c))) == 0
}

func (c Currency) Equals(o Currency) bool {
	return c.Normalize() == o.Normalize()
}

type TxHash string

type BlockNumber uint64

// NewId returns a random v4 uuid string
func NewId() string {
	return uuid.NewString()
}

// IsValidId reports whether id parses as a uuid
func IsValidId(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
