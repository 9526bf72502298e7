package redis

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/database/redisclient"
	"github.com/x-xyz/marketengine/service/cache/provider"
)

var (
	mockCtx = ctx.Background()
)

type testsuite struct {
	suite.Suite
	im *impl
}

func (ts *testsuite) SetupSuite() {
	uri := os.Getenv("REDIS_URI")
	if uri == "" {
		ts.T().Skip("REDIS_URI not set")
	}
	ts.im = NewRedis(redisclient.MustConnectRedis(uri, "")).(*impl)
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) TestSetGetDel() {
	k := "test:registryToken:t1"
	v := []byte(`{"id":"t1"}`)

	ts.NoError(ts.im.Set(mockCtx, k, v, time.Minute))
	r, ttl, err := ts.im.Get(mockCtx, k)
	ts.NoError(err)
	ts.Equal(v, r)
	ts.True(ttl > 0 && ttl <= time.Minute)

	ts.NoError(ts.im.Del(mockCtx, k))
	_, _, err = ts.im.Get(mockCtx, k)
	ts.Equal(provider.ErrNotFound, err)
}

func TestPttlToDuration(t *testing.T) {
	if pttlToDuration(-1) != 0 || pttlToDuration(-2) != 0 {
		t.Fatal("negative pttl must map to zero")
	}
	if pttlToDuration(1500) != 1500*time.Millisecond {
		t.Fatal("unexpected duration")
	}
}
