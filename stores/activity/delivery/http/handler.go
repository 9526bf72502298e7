package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/delivery"
	"github.com/x-xyz/marketengine/domain/activity"
	"github.com/x-xyz/marketengine/middleware"
	"github.com/x-xyz/marketengine/service/cache/provider"
)

const cacheTTL = 10 * time.Second

type lister func(c ctx.Ctx, id string, opts ...activity.FindAllOptions) ([]*activity.Activity, error)

type handler struct {
	activity activity.UseCase
}

func New(e *echo.Echo, activity activity.UseCase, httpCache provider.Provider) {
	h := &handler{activity}

	cache := middleware.CacheHttp(httpCache, cacheTTL)

	e.GET("/tokens/:id/activities", h.list(activity.ListByToken), cache)

	e.GET("/collections/:id/activities", h.list(activity.ListByCollection), cache)

	e.GET("/listings/:id/activities", h.list(activity.ListByListing), middleware.IsValidId("id"), cache)

	e.GET("/users/:id/activities", h.list(activity.ListByUser), cache)
}

func (h *handler) list(fn lister) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Get("ctx").(ctx.Ctx)

		type params struct {
			delivery.PageParams
			Types *string `query:"types"` // comma separated
		}

		p := &params{}
		if err := c.Bind(p); err != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
		}

		offset, limit := p.Page()
		opts := []activity.FindAllOptions{activity.WithPagination(offset, limit)}

		if p.Types != nil && *p.Types != "" {
			types := []activity.Type{}
			for _, t := range strings.Split(*p.Types, ",") {
				types = append(types, activity.Type(strings.ToUpper(strings.TrimSpace(t))))
			}
			opts = append(opts, activity.WithTypes(types...))
		}

		res, err := fn(ctx, c.Param("id"), opts...)
		if err != nil {
			ctx.WithField("err", err).Error("activity.List failed")
			return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
		}

		return delivery.MakeJsonResp(c, http.StatusOK, res)
	}
}
