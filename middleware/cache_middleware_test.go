package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain/keys"
	"github.com/x-xyz/marketengine/service/cache/provider"
	"github.com/x-xyz/marketengine/service/cache/provider/primitive"
)

type cacheMiddlewareSuite struct {
	suite.Suite

	cache provider.Provider
	ctx   ctx.Ctx
}

func (s *cacheMiddlewareSuite) SetupTest() {
	s.cache = primitive.NewPrimitive("http", 1)
	s.ctx = ctx.Background()
}

func TestCacheMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(cacheMiddlewareSuite))
}

func (s *cacheMiddlewareSuite) serve(mw echo.MiddlewareFunc, method, target string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("ctx", s.ctx)
	s.Require().NoError(mw(h)(c))
	return rec
}

func (s *cacheMiddlewareSuite) TestCacheMiddleware() {
	mw := CacheHttp(s.cache, 30*time.Second)

	res := "Hello, World"
	rec := s.serve(mw, http.MethodGet, "/activities?b=2&a=1", func(c echo.Context) error {
		return c.String(http.StatusOK, res)
	})
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(res, rec.Body.String())

	rec2 := s.serve(mw, http.MethodGet, "/activities?a=1&b=2", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello, again")
	})
	s.Equal(http.StatusOK, rec2.Code)
	s.Equal(res, rec2.Body.String())

	key := keys.RedisKey(cacheMiddlewarePfx, cacheKey(&url.URL{Path: "/activities", RawQuery: "a=1&b=2"}))
	_, _, err := s.cache.Get(s.ctx, key)
	s.NoError(err)
}

func (s *cacheMiddlewareSuite) TestSkipErrorResponse() {
	mw := CacheHttp(s.cache, 30*time.Second)

	rec := s.serve(mw, http.MethodGet, "/tokens/t1", func(c echo.Context) error {
		return c.String(http.StatusNotFound, "missing")
	})
	s.Equal(http.StatusNotFound, rec.Code)

	rec2 := s.serve(mw, http.MethodGet, "/tokens/t1", func(c echo.Context) error {
		return c.String(http.StatusOK, "found")
	})
	s.Equal("found", rec2.Body.String())
}

func (s *cacheMiddlewareSuite) TestSkipNonGet() {
	mw := CacheHttp(s.cache, 30*time.Second)

	s.serve(mw, http.MethodPost, "/favorites", func(c echo.Context) error {
		return c.String(http.StatusOK, "first")
	})
	rec := s.serve(mw, http.MethodPost, "/favorites", func(c echo.Context) error {
		return c.String(http.StatusOK, "second")
	})
	s.Equal("second", rec.Body.String())
}
