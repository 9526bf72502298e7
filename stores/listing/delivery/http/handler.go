package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/delivery"
	"github.com/x-xyz/marketengine/domain/listing"
	"github.com/x-xyz/marketengine/middleware"
	authMiddleware "github.com/x-xyz/marketengine/stores/auth/delivery/http/middleware"
)

type handler struct {
	listing listing.UseCase
}

func New(e *echo.Echo, listing listing.UseCase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{listing}

	gs := e.Group("/listings")

	gs.GET("", h.getAll)

	gs.POST("", h.create, authMiddleware.Auth())

	isValidId := middleware.IsValidId("id")

	gs.GET("/:id", h.get, isValidId)

	gs.POST("/:id/view", h.view, isValidId)

	gs.POST("/:id/cancel", h.cancel, isValidId, authMiddleware.Auth())

	gs.POST("/:id/accept", h.accept, isValidId, authMiddleware.Auth())

	gs.POST("/:id/buy", h.buy, isValidId, authMiddleware.Auth())

	e.POST("/offers/:id/accept", h.acceptOffer, isValidId, authMiddleware.Auth())
}

func (h *handler) getAll(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		delivery.PageParams
		Seller     *string         `query:"seller"`
		Token      *string         `query:"token"`
		Collection *string         `query:"collection"`
		Kind       *listing.Kind   `query:"kind"`
		Status     *listing.Status `query:"status"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	opts := []listing.FindAllOptions{}

	if p.Seller != nil {
		opts = append(opts, listing.WithSeller(*p.Seller))
	}

	if p.Token != nil {
		opts = append(opts, listing.WithToken(*p.Token))
	}

	if p.Collection != nil {
		opts = append(opts, listing.WithCollection(*p.Collection))
	}

	if p.Kind != nil {
		opts = append(opts, listing.WithKind(*p.Kind))
	}

	if p.Status != nil {
		opts = append(opts, listing.WithStatus(*p.Status))
	}

	count, err := h.listing.Count(ctx, opts...)
	if err != nil {
		ctx.WithField("err", err).Error("listing.Count failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	offset, limit := p.Page()
	sortBy, sortDir := p.Sort("createdAt", "createdAt", "startTime", "endTime", "price", "views", "likes")
	opts = append(opts, listing.WithPagination(offset, limit), listing.WithSort(sortBy, sortDir))

	res, err := h.listing.FindAll(ctx, opts...)
	if err != nil {
		ctx.WithField("err", err).Error("listing.FindAll failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, delivery.PageResult{Items: res, Count: count})
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := listing.CreateListingParams{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	p.SellerId = c.Get("userId").(string)

	res, err := h.listing.Create(ctx, p)
	if err != nil {
		ctx.WithField("err", err).Warn("listing.Create failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}

func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.listing.Get(ctx, c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) view(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	if err := h.listing.RecordView(ctx, c.Param("id")); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) cancel(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.listing.Cancel(ctx, c.Param("id"), c.Get("userId").(string))
	if err != nil {
		ctx.WithField("err", err).Warn("listing.Cancel failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) accept(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		BidOrOfferId string `json:"bidOrOfferId" validate:"required"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	res, err := h.listing.Accept(ctx, c.Param("id"), p.BidOrOfferId, c.Get("userId").(string))
	if err != nil {
		ctx.WithField("err", err).Warn("listing.Accept failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}

func (h *handler) buy(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.listing.Buy(ctx, c.Param("id"), c.Get("userId").(string))
	if err != nil {
		ctx.WithField("err", err).Warn("listing.Buy failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}

func (h *handler) acceptOffer(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		TokenId string `json:"tokenId" validate:"required"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	res, err := h.listing.AcceptOffer(ctx, c.Param("id"), p.TokenId, c.Get("userId").(string))
	if err != nil {
		ctx.WithField("err", err).Warn("listing.AcceptOffer failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}
