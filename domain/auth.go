package domain

import (
	"github.com/golang-jwt/jwt"

	"github.com/x-xyz/marketengine/base/ctx"
)

// JwtCustomClaims carries the user id in the standard subject claim
type JwtCustomClaims struct {
	jwt.StandardClaims
}

type AuthUsecase interface {
	SignToken(ctx ctx.Ctx, userId string) (string, error)
	ParseToken(ctx ctx.Ctx, token string) (userId string, err error)
}
