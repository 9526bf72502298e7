package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/delivery"
	"github.com/x-xyz/marketengine/domain/collection"
	"github.com/x-xyz/marketengine/middleware"
	"github.com/x-xyz/marketengine/service/cache/provider"
	authMiddleware "github.com/x-xyz/marketengine/stores/auth/delivery/http/middleware"
)

type handler struct {
	collection collection.UseCase
}

func New(e *echo.Echo, collection collection.UseCase, authMiddleware *authMiddleware.AuthMiddleware, httpCache provider.Provider) {
	h := &handler{collection}

	cache := middleware.CacheHttp(httpCache, 30*time.Second)

	e.GET("/tokens/:id", h.getToken, cache)

	e.PUT("/tokens/:id", h.upsertToken, authMiddleware.Auth(), authMiddleware.IsAdmin())

	e.GET("/collections/:id/royalty", h.getRoyalty, cache)

	e.PUT("/collections/:id/royalty", h.setRoyalty, authMiddleware.Auth(), authMiddleware.IsAdmin())
}

func (h *handler) getToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.collection.GetToken(ctx, c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) upsertToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	t := &collection.Token{}
	if err := c.Bind(t); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	t.Id = c.Param("id")

	if err := h.collection.UpsertToken(ctx, t); err != nil {
		ctx.WithField("err", err).Error("collection.UpsertToken failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, t)
}

func (h *handler) getRoyalty(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.collection.GetRoyalty(ctx, c.Param("id"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) setRoyalty(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	r := &collection.RoyaltyConfig{}
	if err := c.Bind(r); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	r.CollectionId = c.Param("id")

	if err := h.collection.SetRoyalty(ctx, r); err != nil {
		ctx.WithField("err", err).Error("collection.SetRoyalty failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, r)
}
