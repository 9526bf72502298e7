package compound

import (
	"time"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/service/cache/provider"
)

type impl struct {
	layers []provider.Provider
}

// NewCompound stacks layers, fastest first. A read returns the first hit and
// copies it into the layers in front of it. A layer that errors on read is
// treated as a miss so a redis outage degrades to the local layer.
func NewCompound(layers []provider.Provider) provider.Provider {
	return &impl{layers}
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, time.Duration, error) {
	for idx, lyr := range im.layers {
		val, ttl, err := lyr.Get(c, key)
		if err == provider.ErrNotFound {
			continue
		} else if err != nil {
			c.WithField("err", err).WithField("layer", idx).Warn("cache layer Get failed")
			continue
		}

		for _, front := range im.layers[:idx] {
			if err := front.Set(c, key, val, ttl); err != nil {
				c.WithField("err", err).WithField("key", key).Warn("cache backfill failed")
			}
		}
		return val, ttl, nil
	}
	return nil, 0, provider.ErrNotFound
}

// Set writes every layer and returns the first error
func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	var first error
	for _, lyr := range im.layers {
		if err := lyr.Set(c, key, value, ttl); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Del removes key from every layer and returns the first error
func (im *impl) Del(c ctx.Ctx, key string) error {
	var first error
	for _, lyr := range im.layers {
		if err := lyr.Del(c, key); err != nil && first == nil {
			first = err
		}
	}
	return first
}
