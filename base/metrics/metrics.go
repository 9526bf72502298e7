/*Package metrics wraps datadog-go to faciliate metric recording
Following are naming convention of metric:
- Internal process time: *.time
- External latency: *.latency
- Error: *.err
- Warning: *.warn
*/
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/x-xyz/marketengine/base/env"
	"github.com/x-xyz/marketengine/base/log"
)

// Ender provides interface for BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpAvg(key string, val float64, tags ...string)
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)

	BumpTime(key string, tags ...string) Ender
}

// statsCli is the subset of the dogstatsd client used here
type statsCli interface {
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
}

var (
	cliOnce sync.Once
	cli     statsCli

	tagsOnce    sync.Once
	processTags []string
)

// client returns the datadog client, or a LogClient when no agent host is configured
func client() statsCli {
	cliOnce.Do(func() {
		host := viper.GetString("datadog_host")
		if host == "" {
			cli = &LogClient{}
			return
		}
		cli = newDDClient(host)
	})
	return cli
}

// defaultTags are read on first bump, package level services are created
// before the config is loaded.
func defaultTags() []string {
	tagsOnce.Do(func() {
		processTags = []string{
			"pod:" + env.PodName(),
			"env:" + viper.GetString("env_name"),
			"app:" + viper.GetString("app_name"),
		}
	})
	return processTags
}

// New creates a metric client with package name as prefix
func New(pkgName string) Service {
	return &Metrics{
		pkgName: pkgName,
		tags:    defaultTags,
		cli:     client,
	}
}

// Metrics prefixes every key with the package name and attaches the process tags
type Metrics struct {
	pkgName string
	tags    func() []string
	cli     func() statsCli
}

func (mt *Metrics) key(key string) string {
	return mt.pkgName + `.` + key
}

func (mt *Metrics) withTags(tags []string) []string {
	var base []string
	if mt.tags != nil {
		base = mt.tags()
	}
	res := make([]string, 0, len(base)+len(tags)/2)
	res = append(res, base...)
	return append(res, parseTag(tags)...)
}

func (mt *Metrics) recoverBump(key string, tags []string) {
	if err := recover(); err != nil {
		log.Log().WithFields(log.Fields{
			"err":  err,
			"key":  mt.key(key),
			"tags": strings.Join(tags, "#"),
		}).Error("bump panic")
	}
}

// BumpAvg bumps the average for the given key.
func (mt *Metrics) BumpAvg(key string, val float64, tags ...string) {
	defer mt.recoverBump(key, tags)
	// datadog doesn't have a function to compute average only, gauge is the closest
	if err := mt.cli().Gauge(mt.key(key), val, mt.withTags(tags), 1); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key, "func": "BumpAvg"}).Error("Bump fail")
	}
}

// BumpSum bumps the sum for the given key.
func (mt *Metrics) BumpSum(key string, val float64, tags ...string) {
	defer mt.recoverBump(key, tags)
	if err := mt.cli().Count(mt.key(key), int64(val), mt.withTags(tags), 1); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key, "func": "BumpSum"}).Error("Bump fail")
	}
}

// BumpHistogram bumps the histogram for the given key.
func (mt *Metrics) BumpHistogram(key string, val float64, tags ...string) {
	defer mt.recoverBump(key, tags)
	if err := mt.cli().Histogram(mt.key(key), val, mt.withTags(tags), 1); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key, "func": "BumpHistogram"}).Error("Bump fail")
	}
}

// BumpTime starts a timer, End() on the returned value records it:
//
//     defer s.BumpTime("my.function").End()
func (mt *Metrics) BumpTime(key string, tags ...string) Ender {
	return &timeTracker{
		start: time.Now(),
		end: func(dur float64) {
			defer mt.recoverBump(key, tags)
			if err := mt.cli().TimeInMilliseconds(mt.key(key), dur, mt.withTags(tags), 1); err != nil {
				log.Log().WithFields(log.Fields{"err": err, "key": key, "func": "BumpTime"}).Error("Bump fail")
			}
		},
	}
}

type timeTracker struct {
	start time.Time
	end   func(float64)
}

func (t *timeTracker) End() {
	d := time.Since(t.start)
	msec := d / time.Millisecond
	nsec := d % time.Millisecond
	t.end(float64(msec) + float64(nsec)*1e-6)
}

func parseTag(tags []string) []string {
	if tags == nil {
		return nil
	}
	if len(tags)%2 != 0 {
		log.Log().WithField("tags", tags).Panic("tag length needs to be multiple of 2")
	}
	arr := make([]string, len(tags)/2)
	for i := 0; i < len(tags); i += 2 {
		arr[i/2] = tags[i] + ":" + tags[i+1]
	}
	return arr
}
