package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestStateError(t *testing.T) {
	req := require.New(t)
	err := xerrors.Errorf("accept: %w", &StateError{Entity: "listing", Id: "l1", Status: "SOLD"})
	req.True(errors.Is(err, ErrInvalidState))

	var se *StateError
	req.True(errors.As(err, &se))
	req.Equal("SOLD", se.Status)
}

func TestBidTooLowError(t *testing.T) {
	req := require.New(t)
	highest := decimal.NewFromInt(7)
	err := &BidTooLowError{Reserve: decimal.NewFromInt(10), Highest: &highest}
	req.True(errors.Is(err, ErrValidation))
	req.Equal("bid below reserve price 10, highest bid 7", err.Error())
	req.Equal("bid below reserve price 10", (&BidTooLowError{Reserve: decimal.NewFromInt(10)}).Error())
}
