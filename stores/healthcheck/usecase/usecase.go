package usecase

import (
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	hcdomain "github.com/x-xyz/marketengine/domain/healthcheck"
)

type impl struct {
	repo hcdomain.HealthCheckRepo
}

// New creates new healthCheckUsecase object representation of HealthCheckUsecase interface
func New(repo hcdomain.HealthCheckRepo) hcdomain.HealthCheckUsecase {
	return &impl{
		repo: repo,
	}
}

func (im *impl) Check(c ctx.Ctx) (hcdomain.Report, error) {
	report := hcdomain.Report{Mongo: hcdomain.StatusOK, Cache: hcdomain.StatusOK}
	var down []string

	if err := im.repo.PingDB(c); err != nil {
		report.Mongo = hcdomain.StatusDown
		down = append(down, "mongo")
	}

	configured, err := im.repo.PingCache(c)
	switch {
	case !configured:
		report.Cache = hcdomain.StatusSkipped
	case err != nil:
		report.Cache = hcdomain.StatusDown
		down = append(down, "cache")
	}

	if len(down) > 0 {
		return report, xerrors.Errorf("%v down: %w", down, domain.ErrDependencyFailure)
	}
	return report, nil
}
