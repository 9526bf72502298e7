package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/delivery"
	"github.com/x-xyz/marketengine/domain"
)

type AuthMiddleware struct {
	auth     domain.AuthUsecase
	adminIds map[string]bool
}

func New(auth domain.AuthUsecase, adminIds []string) *AuthMiddleware {
	admins := make(map[string]bool, len(adminIds))
	for _, id := range adminIds {
		admins[id] = true
	}
	return &AuthMiddleware{
		auth:     auth,
		adminIds: admins,
	}
}

// Auth requires a bearer token and puts the caller on the request ctx
func (m *AuthMiddleware) Auth() echo.MiddlewareFunc {
	return middleware.KeyAuth(m.validateAuthToken)
}

func (m *AuthMiddleware) OptionalAuth() echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Skipper: func(c echo.Context) bool {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			return len(auth) == 0
		},
		Validator: m.validateAuthToken,
	})
}

// IsAdmin must be mounted after Auth
func (m *AuthMiddleware) IsAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userId, _ := c.Get("userId").(string)
			if m.adminIds[userId] {
				return next(c)
			}
			return delivery.MakeJsonResp(c, http.StatusForbidden, "require admin privilege")
		}
	}
}

func (m *AuthMiddleware) validateAuthToken(key string, c echo.Context) (bool, error) {
	cont := c.Get("ctx").(ctx.Ctx)
	userId, err := m.auth.ParseToken(cont, key)
	if err != nil {
		cont.WithField("err", err).Warn("auth.ParseToken failed")
		return false, nil
	}
	c.Set("userId", userId)
	c.Set("ctx", ctx.WithCaller(cont, userId))
	return true, nil
}
