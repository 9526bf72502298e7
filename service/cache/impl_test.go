package cache

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain/keys"
	"github.com/x-xyz/marketengine/service/cache/provider"
	"github.com/x-xyz/marketengine/service/cache/provider/primitive"
)

var (
	mockCtx = ctx.Background()
)

type royalty struct {
	CollectionId string `json:"collectionId"`
	Percentage   string `json:"percentage"`
}

type testsuite struct {
	suite.Suite
	im    *impl
	cache provider.Provider
}

func (ts *testsuite) SetupTest() {
	ts.cache = primitive.NewPrimitive("test", 1)
	ts.im = New(ServiceConfig{
		Ttl:   time.Second,
		Pfx:   keys.PfxRegistryRoyalty,
		Cache: ts.cache,
	}).(*impl)
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) TestGetSet() {
	var (
		k = "col-1"
		v = royalty{"col-1", "0.05"}
		c = &royalty{}
	)

	ts.Equal(ErrNotFound, ts.im.Get(mockCtx, k, c))
	ts.NoError(ts.im.Set(mockCtx, k, v))

	raw, _, err := ts.cache.Get(mockCtx, keys.RedisKey(keys.PfxRegistryRoyalty, k))
	ts.NoError(err)
	ts.NoError(json.Unmarshal(raw, c))
	ts.Equal(v, *c)

	c = &royalty{}
	ts.NoError(ts.im.Get(mockCtx, k, c))
	ts.Equal(v, *c)

	ts.NoError(ts.im.Del(mockCtx, k))
	ts.Equal(ErrNotFound, ts.im.Get(mockCtx, k, c))
}

func (ts *testsuite) TestExpire() {
	ts.NoError(ts.im.Set(mockCtx, "col-2", royalty{"col-2", "0"}))
	time.Sleep(time.Second)
	ts.Equal(ErrNotFound, ts.im.Get(mockCtx, "col-2", &royalty{}))
}

func (ts *testsuite) TestGetByFunc() {
	var (
		k     = "col-3"
		v     = royalty{"col-3", "0.1"}
		calls = 0
	)
	getter := func() (interface{}, error) {
		calls++
		return &v, nil
	}

	c := &royalty{}
	ts.NoError(ts.im.GetByFunc(mockCtx, k, c, getter))
	ts.Equal(v, *c)

	c = &royalty{}
	ts.NoError(ts.im.GetByFunc(mockCtx, k, c, getter))
	ts.Equal(v, *c)
	ts.Equal(1, calls)
}

func (ts *testsuite) TestGetByFuncGetterError() {
	errGetter := errors.New("registry down")
	err := ts.im.GetByFunc(mockCtx, "col-4", &royalty{}, func() (interface{}, error) {
		return nil, errGetter
	})
	ts.Equal(errGetter, err)
	ts.Equal(ErrNotFound, ts.im.Get(mockCtx, "col-4", &royalty{}))
}

func (ts *testsuite) TestGetByFuncWrongType() {
	err := ts.im.GetByFunc(mockCtx, "col-5", &royalty{}, func() (interface{}, error) {
		return royalty{"col-5", "0"}, nil
	})
	ts.Error(err)
	ts.Equal(ErrNotFound, ts.im.Get(mockCtx, "col-5", &royalty{}))
}
