package ptr

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type pointerSuite struct {
	suite.Suite
}

func (s *pointerSuite) TestPointer() {
	now := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	p1 := String(`abc123`)
	p2 := Int(123)
	p3 := Uint64(4567)
	p4 := Int64(891011)
	p5 := Time(now)
	p6 := Decimal(decimal.New(55, 0))
	p7 := Bool(true)

	s.Equal(*p1, `abc123`)
	s.Equal(*p2, int(123))
	s.Equal(*p3, uint64(4567))
	s.Equal(*p4, int64(891011))
	s.True(p5.Equal(now))
	s.True(p6.Equal(decimal.NewFromInt(55)))
	s.Equal(*p7, true)
}

func (s *pointerSuite) TestDecimalFromString() {
	s.Equal("92.5", DecimalFromString("92.50").String())
	s.Panics(func() { DecimalFromString("not a number") })
}

func TestReflectSuite(t *testing.T) {
	rs := new(pointerSuite)
	suite.Run(t, rs)
}
