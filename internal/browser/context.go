// internal/browser/context.go
package browser

import (
	"context"
	"time"
)

// ActionContext bounds one page action. Values come from tab, so an engine
// that keeps its target in the context (chromedp) still finds it. The result
// ends when tab ends, when op ends (with op's cause), or after timeout.
func ActionContext(tab, op context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancelCause := context.WithCancelCause(tab)
	stop := context.AfterFunc(op, func() { cancelCause(context.Cause(op)) })
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		stop()
		cancelTimeout()
		cancelCause(context.Canceled)
	}
}

// Teardown gives cleanup work its own budget. The returned context keeps
// ctx's values but not its cancellation, so a page still closes after the
// case that opened it timed out.
func Teardown(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}
