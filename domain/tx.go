package domain

import "github.com/x-xyz/marketengine/base/ctx"

// Transactor runs fn as one all-or-nothing unit. Repositories called with the
// ctx passed to fn take part in the same transaction.
type Transactor interface {
	RunWithTransaction(c ctx.Ctx, fn func(ctx.Ctx) error) error
}
