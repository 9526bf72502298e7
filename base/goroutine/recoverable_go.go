package goroutine

import (
	"runtime/debug"

	"github.com/x-xyz/marketengine/base/log"
)

// PanicEvent is a panic recovered from a worker goroutine
type PanicEvent struct {
	Panic interface{}
	Stack []byte
}

type options struct {
	name        string
	beforeStart func()
	afterEnded  func()
	onPanic     func(p interface{}, stack []byte)
}

// Option configures RecoverableGo
type Option func(*options)

// WithName tags the panic log with the worker name
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

func WithBeforeStart(f func()) Option {
	return func(o *options) { o.beforeStart = f }
}

// WithAfterEnded runs f once the worker returns or panics, before the panic handler
func WithAfterEnded(f func()) Option {
	return func(o *options) { o.afterEnded = f }
}

func WithAfterRecovered(f func(p interface{}, stack []byte)) Option {
	return func(o *options) { o.onPanic = f }
}

// RecoverableGo runs f in a new goroutine. The returned channel receives the
// recovered panic, or is closed when f returns normally.
func RecoverableGo(f func(), opts ...Option) <-chan *PanicEvent {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	done := make(chan *PanicEvent, 1)
	go func() {
		defer func() {
			if o.afterEnded != nil {
				o.afterEnded()
			}

			p := recover()
			if p == nil {
				close(done)
				return
			}

			stack := debug.Stack()
			log.Log().WithFields(log.Fields{
				"worker": o.name,
				"err":    p,
				"stack":  string(stack),
			}).Error("panic")
			if o.onPanic != nil {
				o.onPanic(p, stack)
			}
			done <- &PanicEvent{p, stack}
		}()

		if o.beforeStart != nil {
			o.beforeStart()
		}
		f()
	}()
	return done
}
