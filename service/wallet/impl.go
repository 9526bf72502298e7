package wallet

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	bCtx "github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/log"
	"github.com/x-xyz/marketengine/base/metrics"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/wallet"
)

const defaultTimeout = 10 * time.Second

var met = metrics.New("wallet")

func NewClient(cfg *ClientCfg) wallet.Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &client{
		client:  cfg.HttpClient,
		baseUrl: strings.TrimRight(cfg.BaseUrl, "/"),
		apiKey:  cfg.ApiKey,
		timeout: timeout,
	}
}

type client struct {
	client  http.Client
	baseUrl string
	apiKey  string
	timeout time.Duration
}

func (c *client) HoldFunds(ctx bCtx.Ctx, userId string, amount decimal.Decimal, currency domain.Currency, reference string) error {
	return c.post(ctx, "/holds", reference, holdRequest{
		UserId:    userId,
		Amount:    amount.String(),
		Currency:  string(currency.Normalize()),
		Reference: reference,
	})
}

func (c *client) ReleaseFunds(ctx bCtx.Ctx, userId string, amount decimal.Decimal, currency domain.Currency, reference string) error {
	return c.post(ctx, "/releases", reference, holdRequest{
		UserId:    userId,
		Amount:    amount.String(),
		Currency:  string(currency.Normalize()),
		Reference: reference,
	})
}

func (c *client) Transfer(ctx bCtx.Ctx, params wallet.TransferParams) error {
	return c.post(ctx, "/transfers", params.Reference, transferRequest{
		FromUserId: params.FromUserId,
		ToUserId:   params.ToUserId,
		Amount:     params.Amount.String(),
		Currency:   string(params.Currency.Normalize()),
		Reference:  params.Reference,
	})
}

// post sends body as json. Every failure wraps domain.ErrDependencyFailure.
func (c *client) post(ctx bCtx.Ctx, path, reference string, body interface{}) error {
	defer met.BumpTime("request.time", "path", path).End()

	ctx, cancel := bCtx.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseUrl + path
	data, err := json.Marshal(body)
	if err != nil {
		ctx.WithField("err", err).Error("json.Marshal failed")
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("NewRequestWithContext failed")
		return xerrors.Errorf("wallet %s: %v: %w", path, err, domain.ErrDependencyFailure)
	}
	req.Header.Set("Content-Type", "application/json")
	// the ledger dedups retried requests on this key
	req.Header.Set("Idempotency-Key", reference)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("client.Do failed")
		met.BumpSum("request.err", 1, "path", path)
		return xerrors.Errorf("wallet %s: %v: %w", path, err, domain.ErrDependencyFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 512))
		ctx.WithFields(log.Fields{
			"url":        url,
			"statusCode": resp.StatusCode,
			"body":       string(msg),
		}).Error("resp.StatusCode not 2xx")
		met.BumpSum("request.err", 1, "path", path)
		return xerrors.Errorf("wallet %s: status %d: %v: %w", path, resp.StatusCode, ErrStatusCodeNotOk, domain.ErrDependencyFailure)
	}
	return nil
}
