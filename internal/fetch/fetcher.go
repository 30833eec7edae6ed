// internal/fetch/fetcher.go
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/karstfell/siteforge/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Strategy is one way of retrieving a page's HTML. Strategies are attempted
// strictly in order; the first plausible result short-circuits the chain.
type Strategy struct {
	Name string
	// UsesRelay marks strategies that go through a shared public proxy and
	// therefore pass the politeness rate limiter first.
	UsesRelay bool
	Execute   func(ctx context.Context, rawURL string) (string, error)
}

// Fetcher retrieves a remote page's HTML through an ordered list of
// strategies: a direct fetch first, then public CORS relays. Total failure
// yields an empty string, never an error - callers treat empty HTML as
// "extraction unavailable" and degrade.
type Fetcher struct {
	cfg        config.FetchConfig
	client     *http.Client
	log        *zap.Logger
	limiter    *rate.Limiter
	group      singleflight.Group
	strategies []Strategy
}

// New builds a Fetcher with the default strategy chain.
func New(cfg config.FetchConfig, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Fetcher{
		cfg: cfg,
		client: newHTTPClient(ClientConfig{
			IgnoreTLSErrors: cfg.IgnoreTLSErrors,
			RequestTimeout:  cfg.StrategyTimeout,
			ForceHTTP2:      true,
			Logger:          logger,
		}),
		log:     logger.Named("fetch"),
		limiter: rate.NewLimiter(rate.Limit(cfg.ProxyRatePerSec), 1),
	}
	f.strategies = f.defaultStrategies()
	return f
}

// NewWithStrategies builds a Fetcher over an explicit chain. Used by tests
// and by callers that need to reorder or stub providers.
func NewWithStrategies(cfg config.FetchConfig, logger *zap.Logger, strategies []Strategy) *Fetcher {
	f := New(cfg, logger)
	f.strategies = strategies
	return f
}

// Fetch returns the page HTML, or "" when every strategy failed. Concurrent
// fetches of the same URL are collapsed into one.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) string {
	if ctx.Err() != nil {
		return ""
	}
	result, _, _ := f.group.Do(rawURL, func() (interface{}, error) {
		// The shared execution is detached from the initiating caller:
		// late joiners must not inherit that caller's cancellation. The
		// per-strategy timeouts still bound the work.
		return f.fetch(context.WithoutCancel(ctx), rawURL), nil
	})
	html, _ := result.(string)
	return html
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) string {
	for _, strategy := range f.strategies {
		if ctx.Err() != nil {
			break
		}
		if strategy.UsesRelay {
			if err := f.limiter.Wait(ctx); err != nil {
				break
			}
		}

		// A hung provider must not block the whole chain; timeout counts as
		// strategy failure.
		attemptCtx, cancel := context.WithTimeout(ctx, f.cfg.StrategyTimeout)
		html, err := strategy.Execute(attemptCtx, rawURL)
		cancel()

		if err != nil {
			f.log.Debug("Fetch strategy failed",
				zap.String("strategy", strategy.Name), zap.Error(err))
			continue
		}
		if len(html) <= f.cfg.MinPlausibleLen {
			f.log.Debug("Fetch strategy returned implausibly short body",
				zap.String("strategy", strategy.Name), zap.Int("length", len(html)))
			continue
		}

		f.log.Info("Fetch strategy succeeded",
			zap.String("strategy", strategy.Name),
			zap.Int("html_length", len(html)))
		return html
	}

	f.log.Warn("All fetch strategies failed", zap.String("url", rawURL))
	return ""
}

// Default relay endpoints. Each provider has its own response envelope:
// AllOrigins wraps the document in JSON, the others return raw text.
const (
	allOriginsEndpoint    = "https://api.allorigins.win/get?url="
	corsProxyEndpoint     = "https://corsproxy.io/?"
	isomorphicGitEndpoint = "https://proxy-cors.isomorphic-git.org/"
)

func (f *Fetcher) defaultStrategies() []Strategy {
	return []Strategy{
		{
			Name:    "direct",
			Execute: f.directStrategy,
		},
		{
			Name:      "allorigins",
			UsesRelay: true,
			Execute: func(ctx context.Context, rawURL string) (string, error) {
				return f.jsonEnvelopeStrategy(ctx, allOriginsEndpoint+url.QueryEscape(rawURL))
			},
		},
		{
			Name:      "corsproxy",
			UsesRelay: true,
			Execute: func(ctx context.Context, rawURL string) (string, error) {
				return f.rawTextStrategy(ctx, corsProxyEndpoint+url.QueryEscape(rawURL))
			},
		},
		{
			Name:      "isomorphic-git",
			UsesRelay: true,
			Execute: func(ctx context.Context, rawURL string) (string, error) {
				return f.rawTextStrategy(ctx, isomorphicGitEndpoint+rawURL)
			},
		},
	}
}

// directStrategy fetches the page itself with a descriptive user agent.
func (f *Fetcher) directStrategy(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	return f.doText(req)
}

// rawTextStrategy fetches a relay URL expecting the raw document back.
func (f *Fetcher) rawTextStrategy(ctx context.Context, relayURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, relayURL, nil)
	if err != nil {
		return "", err
	}
	return f.doText(req)
}

// jsonEnvelopeStrategy fetches a relay URL expecting a {contents: "..."}
// JSON envelope.
func (f *Fetcher) jsonEnvelopeStrategy(ctx context.Context, relayURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, relayURL, nil)
	if err != nil {
		return "", err
	}
	body, err := f.doText(req)
	if err != nil {
		return "", err
	}

	var envelope struct {
		Contents string `json:"contents"`
	}
	if err := json.UnmarshalFromString(body, &envelope); err != nil {
		return "", fmt.Errorf("decoding relay envelope: %w", err)
	}
	return envelope.Contents, nil
}

func (f *Fetcher) doText(req *http.Request) (string, error) {
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}
	return readBody(resp)
}
