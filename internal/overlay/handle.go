// internal/overlay/handle.go
package overlay

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/karstfell/siteforge/internal/config"
)

// DocumentHandle is the injector's view of a loaded document. The production
// implementation drives a real browser over CDP; tests substitute a fake.
type DocumentHandle interface {
	// Navigate loads the given URL in the handle's document.
	Navigate(ctx context.Context, url string) error
	// WaitLoaded blocks until the current document is ready for scripting.
	WaitLoaded(ctx context.Context) error
	// Evaluate runs a script in the document. out may be nil when the result
	// is not needed.
	Evaluate(ctx context.Context, script string, out interface{}) error
	// ExposeCallback registers a named binding callable from page scripts.
	// The binding survives navigations within the handle's lifetime.
	ExposeCallback(ctx context.Context, name string, fn func(payload string)) error
	// Close releases the underlying document and browser resources.
	Close(ctx context.Context) error
}

// ChromeHandle implements DocumentHandle over a dedicated chromedp browser
// context.
type ChromeHandle struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	cfg         config.OverlayConfig
	log         *zap.Logger
}

var _ DocumentHandle = (*ChromeHandle)(nil)

// NewChromeHandle starts a browser and returns a handle bound to one tab.
// The caller owns the handle and must Close it.
func NewChromeHandle(parent context.Context, cfg config.OverlayConfig, logger *zap.Logger) (*ChromeHandle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Force target creation so later Evaluate calls have a live connection.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser context: %w", err)
	}

	return &ChromeHandle{
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: allocCancel,
		cfg:         cfg,
		log:         logger.Named("overlay.browser"),
	}, nil
}

func (h *ChromeHandle) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(h.ctx, h.cfg.NavigationTimeout)
	defer cancel()
	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (h *ChromeHandle) WaitLoaded(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(h.ctx, h.cfg.NavigationTimeout)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("document never became ready: %w", err)
	}
	return nil
}

func (h *ChromeHandle) Evaluate(ctx context.Context, script string, out interface{}) error {
	runCtx, cancel := combineContext(h.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.Evaluate(script, out))
}

// ExposeCallback registers a CDP binding and dispatches its invocations to
// fn. The dispatch goroutine keeps page event handlers fast: the page side
// returns immediately after posting the payload.
func (h *ChromeHandle) ExposeCallback(ctx context.Context, name string, fn func(payload string)) error {
	runCtx, cancel := combineContext(h.ctx, ctx)
	defer cancel()

	if err := chromedp.Run(runCtx, runtime.AddBinding(name)); err != nil {
		return fmt.Errorf("failed to add binding %q: %w", name, err)
	}

	chromedp.ListenTarget(h.ctx, func(ev interface{}) {
		call, ok := ev.(*runtime.EventBindingCalled)
		if !ok || call.Name != name {
			return
		}
		go fn(call.Payload)
	})

	h.log.Debug("Exposed page binding", zap.String("name", name))
	return nil
}

func (h *ChromeHandle) Close(ctx context.Context) error {
	h.cancel()
	h.allocCancel()
	return nil
}

// combineContext derives a context that is canceled when either input is.
func combineContext(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
