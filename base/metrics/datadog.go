package metrics

import (
	"fmt"
	"sync/atomic"

	"github.com/DataDog/datadog-go/statsd"

	"github.com/x-xyz/marketengine/base/log"
)

const (
	ddClientsSize    = 16 // needs to be 2^n
	ddClientsIdxMask = ddClientsSize - 1

	// DdPort is the dogstatsd port of the agent
	DdPort = 8125

	// buffer 10 counters before sending to statsd
	bufferMetrics = 10
)

// ddClients round robins over a fixed set of buffered statsd clients
type ddClients struct {
	idx     int32
	clients []*statsd.Client
}

func newDDClient(host string) statsCli {
	c := &ddClients{clients: make([]*statsd.Client, ddClientsSize)}
	addr := fmt.Sprintf("%s:%d", host, DdPort)
	for i := 0; i < ddClientsSize; i++ {
		log.Log().WithFields(log.Fields{"addr": addr, "idx": i}).Info("connecting to datadog agent")

		var err error
		c.clients[i], err = statsd.NewBuffered(addr, bufferMetrics)
		if err != nil {
			log.Log().WithFields(log.Fields{"addr": addr, "err": err}).Panic(
				"can't talk to datadog agent")
		}
	}
	return c
}

func (c *ddClients) next() *statsd.Client {
	i := atomic.AddInt32(&c.idx, 1) & ddClientsIdxMask
	return c.clients[i]
}

func (c *ddClients) Gauge(name string, value float64, tags []string, rate float64) error {
	return c.next().Gauge(name, value, tags, rate)
}

func (c *ddClients) Count(name string, value int64, tags []string, rate float64) error {
	return c.next().Count(name, value, tags, rate)
}

func (c *ddClients) Histogram(name string, value float64, tags []string, rate float64) error {
	return c.next().Histogram(name, value, tags, rate)
}

func (c *ddClients) TimeInMilliseconds(name string, value float64, tags []string, rate float64) error {
	return c.next().TimeInMilliseconds(name, value, tags, rate)
}
