package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/delivery"
	"github.com/x-xyz/marketengine/domain/bid"
	"github.com/x-xyz/marketengine/middleware"
	authMiddleware "github.com/x-xyz/marketengine/stores/auth/delivery/http/middleware"
)

type handler struct {
	bid bid.UseCase
}

func New(e *echo.Echo, bid bid.UseCase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{bid}

	isValidId := middleware.IsValidId("id")

	e.GET("/listings/:id/bids", h.getListingBids, isValidId)

	e.GET("/listings/:id/bids/highest", h.getHighestBid, isValidId)

	e.POST("/listings/:id/bids", h.placeBid, isValidId, authMiddleware.Auth())

	gb := e.Group("/bids")

	gb.GET("", h.getBids)

	gb.GET("/:id", h.getBid, isValidId)

	gb.DELETE("/:id", h.cancelBid, isValidId, authMiddleware.Auth())

	gof := e.Group("/offers")

	gof.GET("", h.getOffers)

	gof.POST("", h.placeOffer, authMiddleware.Auth())

	gof.GET("/:id", h.getOffer, isValidId)

	gof.DELETE("/:id", h.cancelOffer, isValidId, authMiddleware.Auth())
}

type searchParams struct {
	delivery.PageParams
	Listing    *string     `query:"listing"`
	Token      *string     `query:"token"`
	Collection *string     `query:"collection"`
	User       *string     `query:"user"`
	Status     *bid.Status `query:"status"`
}

func (p *searchParams) options() []bid.FindAllOptions {
	opts := []bid.FindAllOptions{}

	if p.Listing != nil {
		opts = append(opts, bid.WithListing(*p.Listing))
	}

	if p.Token != nil {
		opts = append(opts, bid.WithToken(*p.Token))
	}

	if p.Collection != nil {
		opts = append(opts, bid.WithCollection(*p.Collection))
	}

	if p.User != nil {
		opts = append(opts, bid.WithUser(*p.User))
	}

	if p.Status != nil {
		opts = append(opts, bid.WithStatus(*p.Status))
	}

	offset, limit := p.Page()
	sortBy, sortDir := p.Sort("createdAt", "createdAt", "amount", "expiresAt")
	return append(opts, bid.WithPagination(offset, limit), bid.WithSort(sortBy, sortDir))
}

func (h *handler) getListingBids(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &searchParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	p.Listing = nil

	opts := append(p.options(), bid.WithListing(c.Param("id")))

	res, err := h.bid.FindBids(ctx, opts...)
	if err != nil {
		ctx.WithField("err", err).Error("bid.FindBids failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getHighestBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.bid.HighestActiveBid(ctx, c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) placeBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := bid.PlaceBidParams{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	p.ListingId = c.Param("id")
	p.BidderId = c.Get("userId").(string)

	res, err := h.bid.PlaceBid(ctx, p)
	if err != nil {
		ctx.WithField("err", err).Warn("bid.PlaceBid failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}

func (h *handler) getBids(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &searchParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	res, err := h.bid.FindBids(ctx, p.options()...)
	if err != nil {
		ctx.WithField("err", err).Error("bid.FindBids failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.bid.GetBid(ctx, c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) cancelBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.bid.CancelBid(ctx, c.Param("id"), c.Get("userId").(string))
	if err != nil {
		ctx.WithField("err", err).Warn("bid.CancelBid failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getOffers(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &searchParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	res, err := h.bid.FindOffers(ctx, p.options()...)
	if err != nil {
		ctx.WithField("err", err).Error("bid.FindOffers failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) placeOffer(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := bid.PlaceOfferParams{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}

	p.OffererId = c.Get("userId").(string)

	res, err := h.bid.PlaceOffer(ctx, p)
	if err != nil {
		ctx.WithField("err", err).Warn("bid.PlaceOffer failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}

func (h *handler) getOffer(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.bid.GetOffer(ctx, c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) cancelOffer(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.bid.CancelOffer(ctx, c.Param("id"), c.Get("userId").(string))
	if err != nil {
		ctx.WithField("err", err).Warn("bid.CancelOffer failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
