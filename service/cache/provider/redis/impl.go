package redis

import (
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/metrics"
	"github.com/x-xyz/marketengine/service/cache/provider"
)

var met = metrics.New("cache.redis")

type impl struct {
	pool *redis.Pool
}

func NewRedis(pool *redis.Pool) provider.Provider {
	return &impl{pool}
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, time.Duration, error) {
	defer met.BumpTime("get.time").End()

	conn, err := im.pool.GetContext(c)
	if err != nil {
		c.WithField("err", err).Error("pool.GetContext failed")
		return nil, 0, err
	}
	defer conn.Close()

	if err := conn.Send("GET", key); err != nil {
		c.WithField("err", err).WithField("key", key).Error("conn.Send GET failed")
		return nil, 0, err
	}
	if err := conn.Send("PTTL", key); err != nil {
		c.WithField("err", err).WithField("key", key).Error("conn.Send PTTL failed")
		return nil, 0, err
	}
	if err := conn.Flush(); err != nil {
		c.WithField("err", err).WithField("key", key).Error("conn.Flush failed")
		return nil, 0, err
	}

	val, err := redis.Bytes(conn.Receive())
	if err == redis.ErrNil {
		met.BumpSum("miss", 1)
		// drain the PTTL reply
		_, _ = conn.Receive()
		return nil, 0, provider.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).WithField("key", key).Error("redis GET failed")
		return nil, 0, err
	}

	ms, err := redis.Int64(conn.Receive())
	if err != nil {
		c.WithField("err", err).WithField("key", key).Error("redis PTTL failed")
		return nil, 0, err
	}
	met.BumpSum("hit", 1)
	return val, pttlToDuration(ms), nil
}

// pttlToDuration maps the PTTL reply, negative means no expiry or gone
func pttlToDuration(ms int64) time.Duration {
	if ms < 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	conn, err := im.pool.GetContext(c)
	if err != nil {
		c.WithField("err", err).Error("pool.GetContext failed")
		return err
	}
	defer conn.Close()

	args := redis.Args{}.Add(key, value)
	if ms := ttl.Milliseconds(); ms > 0 {
		args = args.Add("PX", ms)
	}
	if _, err := conn.Do("SET", args...); err != nil {
		c.WithField("err", err).WithField("key", key).Error("redis SET failed")
		return err
	}
	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	conn, err := im.pool.GetContext(c)
	if err != nil {
		c.WithField("err", err).Error("pool.GetContext failed")
		return err
	}
	defer conn.Close()

	if _, err := conn.Do("DEL", key); err != nil {
		c.WithField("err", err).WithField("key", key).Error("redis DEL failed")
		return err
	}
	return nil
}
