package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/delivery"
	hcdomain "github.com/x-xyz/marketengine/domain/healthcheck"
)

type handler struct {
	healthCheck hcdomain.HealthCheckUsecase
}

// New registers GET /health, it answers 503 with the component report when a store is down
func New(e *echo.Echo, us hcdomain.HealthCheckUsecase) {
	h := &handler{
		healthCheck: us,
	}
	e.GET("/health", h.check)
}

func (h *handler) check(c echo.Context) error {
	cont := c.Get("ctx").(ctx.Ctx)
	report, err := h.healthCheck.Check(cont)
	if err != nil {
		cont.WithField("err", err).WithField("report", report).Warn("health check failed")
		return delivery.MakeJsonResp(c, http.StatusServiceUnavailable, report)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, report)
}
