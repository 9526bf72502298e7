package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/delivery"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/sale"
	"github.com/x-xyz/marketengine/middleware"
	authMiddleware "github.com/x-xyz/marketengine/stores/auth/delivery/http/middleware"
)

type handler struct {
	sale sale.UseCase
}

func New(e *echo.Echo, sale sale.UseCase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{sale}

	isValidId := middleware.IsValidId("id")

	gs := e.Group("/sales")

	gs.GET("", h.getAll)

	gs.GET("/:id", h.get, isValidId)

	gs.GET("/:id/royalties", h.getRoyalties, isValidId)

	gs.POST("/:id/confirm", h.confirm, isValidId, authMiddleware.Auth(), authMiddleware.IsAdmin())

	gs.POST("/:id/fail", h.fail, isValidId, authMiddleware.Auth(), authMiddleware.IsAdmin())

	gs.POST("/:id/cancel", h.cancel, isValidId, authMiddleware.Auth(), authMiddleware.IsAdmin())

	gs.POST("/:id/payout", h.payout, isValidId, authMiddleware.Auth(), authMiddleware.IsAdmin())
}

func (h *handler) getAll(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		delivery.PageParams
		Seller  *string      `query:"seller"`
		Buyer   *string      `query:"buyer"`
		Token   *string      `query:"token"`
		Listing *string      `query:"listing"`
		Offer   *string      `query:"offer"`
		Status  *sale.Status `query:"status"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	opts := []sale.FindAllOptions{}

	if p.Seller != nil {
		opts = append(opts, sale.WithSeller(*p.Seller))
	}

	if p.Buyer != nil {
		opts = append(opts, sale.WithBuyer(*p.Buyer))
	}

	if p.Token != nil {
		opts = append(opts, sale.WithToken(*p.Token))
	}

	if p.Listing != nil {
		opts = append(opts, sale.WithListing(*p.Listing))
	}

	if p.Offer != nil {
		opts = append(opts, sale.WithOffer(*p.Offer))
	}

	if p.Status != nil {
		opts = append(opts, sale.WithStatus(*p.Status))
	}

	count, err := h.sale.Count(ctx, opts...)
	if err != nil {
		ctx.WithField("err", err).Error("sale.Count failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	offset, limit := p.Page()
	sortBy, sortDir := p.Sort("createdAt", "createdAt", "price")
	opts = append(opts, sale.WithPagination(offset, limit), sale.WithSort(sortBy, sortDir))

	res, err := h.sale.FindAll(ctx, opts...)
	if err != nil {
		ctx.WithField("err", err).Error("sale.FindAll failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, delivery.PageResult{Items: res, Count: count})
}

func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.sale.Get(ctx, c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getRoyalties(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.sale.Royalties(ctx, c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) confirm(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		TxHash      domain.TxHash      `json:"txHash" validate:"required"`
		BlockNumber domain.BlockNumber `json:"blockNumber"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	res, err := h.sale.Confirm(ctx, c.Param("id"), p.TxHash, p.BlockNumber)
	if err != nil {
		ctx.WithField("err", err).Warn("sale.Confirm failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

type reasonParams struct {
	Reason string `json:"reason"`
}

func (h *handler) fail(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &reasonParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	res, err := h.sale.Fail(ctx, c.Param("id"), p.Reason)
	if err != nil {
		ctx.WithField("err", err).Warn("sale.Fail failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) cancel(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &reasonParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	res, err := h.sale.Cancel(ctx, c.Param("id"), p.Reason)
	if err != nil {
		ctx.WithField("err", err).Warn("sale.Cancel failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) payout(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.sale.Payout(ctx, c.Param("id"))
	if err != nil {
		ctx.WithField("err", err).Error("sale.Payout failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
