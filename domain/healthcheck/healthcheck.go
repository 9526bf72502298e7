package healthcheck

import (
	"github.com/x-xyz/marketengine/base/ctx"
)

const (
	StatusOK   = "ok"
	StatusDown = "down"
	// StatusSkipped is reported for a component that is not configured
	StatusSkipped = "skipped"
)

// Report is the state of every backing store the api depends on
type Report struct {
	Mongo string `json:"mongo"`
	Cache string `json:"cache"`
}

// Healthy is true when no component is down
func (r Report) Healthy() bool {
	return r.Mongo != StatusDown && r.Cache != StatusDown
}

// HealthCheckUsecase represents the healthCheck's usecases
type HealthCheckUsecase interface {
	// Check pings every component, err wraps domain.ErrDependencyFailure when one is down
	Check(c ctx.Ctx) (Report, error)
}

// HealthCheckRepo is repository layer of healthCheck
type HealthCheckRepo interface {
	PingDB(c ctx.Ctx) error
	// PingCache returns false when no shared cache is configured
	PingCache(c ctx.Ctx) (configured bool, err error)
}
