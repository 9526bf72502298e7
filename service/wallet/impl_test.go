package wallet

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	bCtx "github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/wallet"
)

func TestTransfer(t *testing.T) {
	req := require.New(t)

	var (
		gotPath string
		gotKey  string
		gotAuth string
		got     transferRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Idempotency-Key")
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(&ClientCfg{BaseUrl: srv.URL + "/", ApiKey: "secret", Timeout: time.Second})
	err := c.Transfer(bCtx.Background(), wallet.TransferParams{
		FromUserId: "buyer",
		ToUserId:   "seller",
		Amount:     decimal.RequireFromString("52.25"),
		Currency:   "usdt",
		Reference:  "sale:s1:net",
	})
	req.NoError(err)
	req.Equal("/transfers", gotPath)
	req.Equal("sale:s1:net", gotKey)
	req.Equal("Bearer secret", gotAuth)
	req.Equal(transferRequest{
		FromUserId: "buyer",
		ToUserId:   "seller",
		Amount:     "52.25",
		Currency:   "USDT",
		Reference:  "sale:s1:net",
	}, got)
}

func TestHoldAndRelease(t *testing.T) {
	req := require.New(t)

	paths := []string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(&ClientCfg{BaseUrl: srv.URL})
	req.NoError(c.HoldFunds(bCtx.Background(), "bidder", decimal.NewFromInt(10), "USDT", "bid:b1"))
	req.NoError(c.ReleaseFunds(bCtx.Background(), "bidder", decimal.NewFromInt(10), "USDT", "bid:b1"))
	req.Equal([]string{"/holds", "/releases"}, paths)
}

func TestFailuresAreDependencyFailures(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	c := NewClient(&ClientCfg{BaseUrl: srv.URL})

	err := c.Transfer(bCtx.Background(), wallet.TransferParams{Amount: decimal.NewFromInt(1), Reference: "r"})
	req.ErrorIs(err, domain.ErrDependencyFailure)

	srv.Close()
	err = c.Transfer(bCtx.Background(), wallet.TransferParams{Amount: decimal.NewFromInt(1), Reference: "r"})
	req.ErrorIs(err, domain.ErrDependencyFailure)
}
