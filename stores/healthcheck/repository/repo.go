package repository

import (
	"time"

	"github.com/gomodule/redigo/redis"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/database/mongoclient"
	hcdomain "github.com/x-xyz/marketengine/domain/healthcheck"
)

const pingTimeout = 2 * time.Second

type impl struct {
	mgoClient *mongoclient.Client
	redisPool *redis.Pool
}

// New creates a HealthCheckRepo, redisPool is nil when no shared cache is configured
func New(mgoClient *mongoclient.Client, redisPool *redis.Pool) hcdomain.HealthCheckRepo {
	return &impl{
		mgoClient: mgoClient,
		redisPool: redisPool,
	}
}

func (im *impl) PingDB(context ctx.Ctx) error {
	ctx, cancel := ctx.WithTimeout(context, pingTimeout)
	defer cancel()
	if err := im.mgoClient.Ping(ctx, readpref.Primary()); err != nil {
		context.WithField("err", err).Error("ping mongo error")
		return err
	}
	return nil
}

func (im *impl) PingCache(context ctx.Ctx) (bool, error) {
	if im.redisPool == nil {
		return false, nil
	}

	ctx, cancel := ctx.WithTimeout(context, pingTimeout)
	defer cancel()
	conn, err := im.redisPool.GetContext(ctx)
	if err != nil {
		context.WithField("err", err).Error("redisPool.GetContext failed")
		return true, err
	}
	defer conn.Close()

	if _, err := redis.String(conn.Do("PING")); err != nil {
		context.WithField("err", err).Error("ping redis error")
		return true, err
	}
	return true, nil
}
