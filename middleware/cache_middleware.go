package middleware

import (
	"bytes"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain/keys"
	"github.com/x-xyz/marketengine/service/cache"
	"github.com/x-xyz/marketengine/service/cache/provider"
)

const cacheMiddlewarePfx = keys.PfxHttpCache

// cachedResponse is what CacheHttp stores per url
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// recorder tees the body into buf and remembers the status
type recorder struct {
	http.ResponseWriter
	w      io.Writer
	buf    bytes.Buffer
	status int
}

func newRecorder(rw http.ResponseWriter) *recorder {
	r := &recorder{ResponseWriter: rw, status: http.StatusOK}
	r.w = io.MultiWriter(rw, &r.buf)
	return r
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	return r.w.Write(b)
}

func (r *recorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// cacheKey hashes the path and the query with keys and values in order,
// so ?b=2&a=1 and ?a=1&b=2 share an entry
func cacheKey(u *url.URL) string {
	q := u.Query()
	for _, vs := range q {
		sort.Strings(vs)
	}
	h := fnv.New64a()
	h.Write([]byte(u.Path))
	h.Write([]byte{'?'})
	h.Write([]byte(q.Encode()))
	return strconv.FormatUint(h.Sum64(), 36)
}

// CacheHttp caches successful GET responses by their normalized url.
// Only mount it on routes whose body does not depend on the caller.
func CacheHttp(p provider.Provider, ttl time.Duration) echo.MiddlewareFunc {
	svc := cache.New(cache.ServiceConfig{
		Ttl:   ttl,
		Pfx:   cacheMiddlewarePfx,
		Cache: p,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			cont := c.Get("ctx").(ctx.Ctx)
			key := cacheKey(c.Request().URL)

			hit := cachedResponse{}
			switch err := svc.Get(cont, key, &hit); err {
			case nil:
				h := c.Response().Header()
				for k, vs := range hit.Header {
					h[k] = vs
				}
				c.Response().WriteHeader(hit.Status)
				_, err := c.Response().Write(hit.Body)
				return err
			case cache.ErrNotFound:
			default:
				cont.WithField("err", err).Warn("http cache read failed")
			}

			rec := newRecorder(c.Response().Writer)
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			if rec.status >= http.StatusBadRequest {
				return nil
			}
			miss := cachedResponse{
				Status: rec.status,
				Header: rec.Header().Clone(),
				Body:   rec.buf.Bytes(),
			}
			if err := svc.Set(cont, key, miss); err != nil {
				cont.WithField("err", err).Warn("http cache write failed")
			}
			return nil
		}
	}
}
