package cache

import (
	"encoding/json"
	"reflect"
	"time"

	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/metrics"
	"github.com/x-xyz/marketengine/domain/keys"
	"github.com/x-xyz/marketengine/service/cache/provider"
)

var met = metrics.New("cache")

type impl struct {
	ttl         time.Duration
	pfx         string
	cache       provider.Provider
	serialize   Serializer
	deserialize Deserializer
}

func New(config ServiceConfig) Service {
	im := &impl{
		ttl:         config.Ttl,
		pfx:         config.Pfx,
		cache:       config.Cache,
		serialize:   config.Serialize,
		deserialize: config.Deserialize,
	}
	if im.serialize == nil {
		im.serialize = json.Marshal
	}
	if im.deserialize == nil {
		im.deserialize = json.Unmarshal
	}
	return im
}

func (im *impl) key(key string) string {
	return keys.RedisKey(im.pfx, key)
}

func (im *impl) GetByFunc(c ctx.Ctx, key string, container interface{}, getter OneTimeGetter) error {
	switch err := im.Get(c, key, container); err {
	case nil:
		met.BumpSum("hit", 1, "pfx", im.pfx)
		return nil
	case ErrNotFound:
	default:
		// a broken cache must not break the read
		c.WithField("err", err).WithField("key", key).Warn("Get failed, fall back to getter")
	}
	met.BumpSum("miss", 1, "pfx", im.pfx)

	val, err := getter()
	if err != nil {
		return err
	}

	dst := reflect.ValueOf(container)
	src := reflect.ValueOf(val)
	if src.Kind() != reflect.Ptr || src.IsNil() || src.Type() != dst.Type() {
		return xerrors.Errorf("cache getter returned %T, want %T", val, container)
	}

	if err := im.Set(c, key, val); err != nil {
		c.WithField("err", err).WithField("key", key).Error("Set failed")
	}

	dst.Elem().Set(src.Elem())
	return nil
}

func (im *impl) Get(c ctx.Ctx, key string, container interface{}) error {
	k := im.key(key)
	val, _, err := im.cache.Get(c, k)
	if err == provider.ErrNotFound {
		return ErrNotFound
	} else if err != nil {
		c.WithField("err", err).WithField("key", k).Error("cache.Get failed")
		return err
	}

	if err := im.deserialize(val, container); err != nil {
		c.WithField("err", err).WithField("key", k).Error("deserialize failed")
		return err
	}
	return nil
}

func (im *impl) Set(c ctx.Ctx, key string, value interface{}) error {
	k := im.key(key)
	val, err := im.serialize(value)
	if err != nil {
		c.WithField("err", err).WithField("key", k).Error("serialize failed")
		return err
	}

	if err := im.cache.Set(c, k, val, im.ttl); err != nil {
		c.WithField("err", err).WithField("key", k).Error("cache.Set failed")
		return err
	}
	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	k := im.key(key)
	if err := im.cache.Del(c, k); err != nil {
		c.WithField("err", err).WithField("key", k).Error("cache.Del failed")
		return err
	}
	return nil
}
