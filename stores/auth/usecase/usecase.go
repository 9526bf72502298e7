package usecase

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
)

const defaultTokenTTL = 24 * time.Hour

type impl struct {
	jwtSecret []byte
	ttl       time.Duration
	timeNow   func() time.Time
}

func New(jwtSecret string, ttl time.Duration) domain.AuthUsecase {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &impl{
		jwtSecret: []byte(jwtSecret),
		ttl:       ttl,
		timeNow:   time.Now,
	}
}

func (im *impl) SignToken(ctx ctx.Ctx, userId string) (string, error) {
	if userId == "" {
		return "", xerrors.Errorf("empty user id: %w", domain.ErrValidation)
	}

	now := im.timeNow()
	claims := domain.JwtCustomClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   userId,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(im.ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if ss, err := token.SignedString(im.jwtSecret); err != nil {
		ctx.WithField("err", err).Error("token.SignedString failed")
		return "", err
	} else {
		return ss, nil
	}
}

func (im *impl) ParseToken(ctx ctx.Ctx, str string) (string, error) {
	token, err := jwt.ParseWithClaims(str, &domain.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*domain.JwtCustomClaims); ok && token.Valid && claims.Subject != "" {
		return claims.Subject, nil
	}

	return "", xerrors.Errorf("invalid token: %w", domain.ErrPermissionDenied)
}
