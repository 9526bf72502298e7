package ctx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type testsuite struct {
	suite.Suite
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) TestWithValue() {
	bg := Background()
	ctx := WithValue(bg, "foo", "bar")
	ts.Equal("bar", ctx.Value("foo"))
}

func (ts *testsuite) TestWithValues() {
	bg := Background()
	ctx := WithValues(bg, map[string]interface{}{
		"a": "b",
		"c": "d",
	})
	ts.Equal("b", ctx.Value("a"))
	ts.Equal("d", ctx.Value("c"))
}

func (ts *testsuite) TestWithCaller() {
	bg := Background()
	_, ok := Caller(bg)
	ts.False(ok)

	ctx := WithCaller(bg, "5b0f7b8e-4a43-4d6b-9d7c-2f7c0f0f2b61")
	userId, ok := Caller(ctx)
	ts.True(ok)
	ts.Equal("5b0f7b8e-4a43-4d6b-9d7c-2f7c0f0f2b61", userId)

	_, ok = Caller(WithCaller(bg, ""))
	ts.False(ok)
}

func (ts *testsuite) TestFrom() {
	bg := WithValue(Background(), "foo", "bar")
	inner, cancel := context.WithCancel(context.Background())
	ctx := From(bg, inner)
	cancel()
	ts.Equal(context.Canceled, ctx.Err())
	ts.Nil(ctx.Value("foo"))
}

func (ts *testsuite) TestWithCancel() {
	bg := Background()
	ctx, cancel := WithCancel(bg)
	defer cancel()
	after100Ms := func(ctx context.Context) bool {
		for {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(100 * time.Millisecond):
				return true
			}
		}
	}
	res := true
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	res = after100Ms(ctx)
	ts.Equal(false, res)
}

func (ts *testsuite) TestTimeout() {
	bg := Background()
	ctx, cancel := WithTimeout(bg, 10*time.Millisecond)
	defer cancel()
	after100Ms := func(ctx context.Context) bool {
		for {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(100 * time.Millisecond):
				return true
			}
		}
	}
	res := after100Ms(ctx)
	ts.Equal(false, res)
	ts.Equal("context deadline exceeded", ctx.Err().Error())
}
