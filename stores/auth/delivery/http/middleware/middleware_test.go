package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/stores/auth/usecase"
)

type authMiddlewareSuite struct {
	suite.Suite

	auth domain.AuthUsecase
	m    *AuthMiddleware
}

func (s *authMiddlewareSuite) SetupTest() {
	s.auth = usecase.New("secret", time.Hour)
	s.m = New(s.auth, []string{"admin"})
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(authMiddlewareSuite))
}

func (s *authMiddlewareSuite) run(mws []echo.MiddlewareFunc, token string) (*httptest.ResponseRecorder, string) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("ctx", ctx.Background())

	caller := ""
	h := func(c echo.Context) error {
		caller, _ = ctx.Caller(c.Get("ctx").(ctx.Ctx))
		return c.NoContent(http.StatusOK)
	}
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, caller
}

func (s *authMiddlewareSuite) sign(userId string) string {
	tkn, err := s.auth.SignToken(ctx.Background(), userId)
	s.Require().NoError(err)
	return tkn
}

func (s *authMiddlewareSuite) TestAuth() {
	rec, caller := s.run([]echo.MiddlewareFunc{s.m.Auth()}, s.sign("user-1"))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("user-1", caller)
}

func (s *authMiddlewareSuite) TestAuthMissingToken() {
	rec, _ := s.run([]echo.MiddlewareFunc{s.m.Auth()}, "")
	s.Contains([]int{http.StatusBadRequest, http.StatusUnauthorized}, rec.Code)
}

func (s *authMiddlewareSuite) TestAuthInvalidToken() {
	rec, _ := s.run([]echo.MiddlewareFunc{s.m.Auth()}, "garbage")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *authMiddlewareSuite) TestOptionalAuth() {
	rec, caller := s.run([]echo.MiddlewareFunc{s.m.OptionalAuth()}, "")
	s.Equal(http.StatusOK, rec.Code)
	s.Empty(caller)

	rec, caller = s.run([]echo.MiddlewareFunc{s.m.OptionalAuth()}, s.sign("user-2"))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("user-2", caller)
}

func (s *authMiddlewareSuite) TestIsAdmin() {
	rec, _ := s.run([]echo.MiddlewareFunc{s.m.Auth(), s.m.IsAdmin()}, s.sign("admin"))
	s.Equal(http.StatusOK, rec.Code)

	rec, _ = s.run([]echo.MiddlewareFunc{s.m.Auth(), s.m.IsAdmin()}, s.sign("user-1"))
	s.Equal(http.StatusForbidden, rec.Code)
}
