package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
)

func TestSignAndParseToken(t *testing.T) {
	ctx := ctx.Background()
	u := New("jwt-secret", time.Hour)
	tkn, err := u.SignToken(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, tkn)
	id, err := u.ParseToken(ctx, tkn)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestSignEmptyUser(t *testing.T) {
	u := New("jwt-secret", 0)
	_, err := u.SignToken(ctx.Background(), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseWrongSecret(t *testing.T) {
	ctx := ctx.Background()
	tkn, err := New("jwt-secret", time.Hour).SignToken(ctx, "user-1")
	require.NoError(t, err)

	_, err = New("other-secret", time.Hour).ParseToken(ctx, tkn)
	assert.Error(t, err)
}

func TestParseExpiredToken(t *testing.T) {
	ctx := ctx.Background()
	u := New("jwt-secret", time.Minute).(*impl)
	u.timeNow = func() time.Time { return time.Now().Add(-time.Hour) }
	tkn, err := u.SignToken(ctx, "user-1")
	require.NoError(t, err)

	_, err = u.ParseToken(ctx, tkn)
	assert.Error(t, err)
}
