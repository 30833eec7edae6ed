package overlay

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/karstfell/siteforge/api/schemas"
	"github.com/karstfell/siteforge/internal/config"
)

// fakeHandle is an in-memory DocumentHandle: it records navigations and
// evaluated scripts and lets tests fire the selection binding directly.
type fakeHandle struct {
	mu         sync.Mutex
	navigated  []string
	waited     int
	scripts    []string
	bindings   map[string]func(string)
	accessible bool
	navErr     error
	probeErr   error
}

func newFakeHandle(accessible bool) *fakeHandle {
	return &fakeHandle{
		accessible: accessible,
		bindings:   map[string]func(string){},
	}
}

func (f *fakeHandle) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.navErr != nil {
		return f.navErr
	}
	f.navigated = append(f.navigated, url)
	return nil
}

func (f *fakeHandle) WaitLoaded(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waited++
	return nil
}

func (f *fakeHandle) Evaluate(ctx context.Context, script string, out interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts = append(f.scripts, script)
	if script == accessProbeScript {
		if f.probeErr != nil {
			return f.probeErr
		}
		if flag, ok := out.(*bool); ok {
			*flag = f.accessible
		}
	}
	return nil
}

func (f *fakeHandle) ExposeCallback(ctx context.Context, name string, fn func(payload string)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindings[name] = fn
	return nil
}

func (f *fakeHandle) Close(ctx context.Context) error { return nil }

func (f *fakeHandle) scriptCount(substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int
	for _, s := range f.scripts {
		if strings.Contains(s, substr) {
			n++
		}
	}
	return n
}

func (f *fakeHandle) fireSelection(t *testing.T, payload string) {
	t.Helper()
	f.mu.Lock()
	fn, ok := f.bindings[selectionBinding]
	f.mu.Unlock()
	require.True(t, ok, "selection binding must be exposed")
	fn(payload)
}

func testOverlayConfig() config.OverlayConfig {
	return config.OverlayConfig{
		MinSelectableWidth:  20,
		MinSelectableHeight: 10,
	}
}

func newTestInjector(t *testing.T, accessible bool) (*Injector, *fakeHandle) {
	t.Helper()
	handle := newFakeHandle(accessible)
	in := NewInjector(testOverlayConfig(), handle, "p1", zap.NewNop())
	return in, handle
}

func TestLoadTransitionsToLoaded(t *testing.T) {
	in, handle := newTestInjector(t, true)
	require.Equal(t, StateUnloaded, in.State())

	require.NoError(t, in.Load(context.Background(), "https://example.com"))
	assert.Equal(t, StateLoaded, in.State())
	assert.Equal(t, []string{"https://example.com"}, handle.navigated)
	assert.Equal(t, 1, handle.waited)
}

func TestLoadFailurePropagates(t *testing.T) {
	in, handle := newTestInjector(t, true)
	handle.navErr = errors.New("net::ERR_NAME_NOT_RESOLVED")

	require.Error(t, in.Load(context.Background(), "https://nowhere.invalid"))
	assert.Equal(t, StateUnloaded, in.State())
}

func TestActivateRequiresLoadedDocument(t *testing.T) {
	in, _ := newTestInjector(t, true)
	assert.Error(t, in.Activate(context.Background()))
}

func TestActivateGrantedInjectsInstrumentation(t *testing.T) {
	in, handle := newTestInjector(t, true)
	require.NoError(t, in.Load(context.Background(), "https://example.com"))
	require.NoError(t, in.Activate(context.Background()))

	assert.Equal(t, StateAccessGranted, in.State())
	assert.Empty(t, in.Notice())
	assert.Equal(t, 1, handle.scriptCount("siteforge-overlay-style"), "style block injected once")
	assert.Equal(t, 1, handle.scriptCount("__siteforgeInstrumented"), "instrumentation injected once")
	assert.Contains(t, handle.bindings, selectionBinding)

	// The configured size thresholds end up in the page script.
	assert.Equal(t, 1, handle.scriptCount("rect.width < 20 || rect.height < 10"))
}

func TestActivateDeniedIsTerminalForLoadCycle(t *testing.T) {
	in, handle := newTestInjector(t, false)
	require.NoError(t, in.Load(context.Background(), "https://example.com"))

	require.NoError(t, in.Activate(context.Background()), "denial is not an error")
	assert.Equal(t, StateAccessDenied, in.State())
	assert.Equal(t, accessDeniedNotice, in.Notice())
	assert.Equal(t, 1, handle.scriptCount("siteforge-overlay-notice"), "banner surfaced")
	assert.Zero(t, handle.scriptCount("__siteforgeInstrumented"), "no instrumentation on denial")

	// A second Activate must not retry the probe.
	probes := handle.scriptCount("document.body !== null")
	require.NoError(t, in.Activate(context.Background()))
	assert.Equal(t, probes, handle.scriptCount("document.body !== null"))
}

func TestActivateProbeErrorCountsAsDenied(t *testing.T) {
	in, handle := newTestInjector(t, true)
	handle.probeErr = errors.New("execution context destroyed")

	require.NoError(t, in.Load(context.Background(), "https://example.com"))
	require.NoError(t, in.Activate(context.Background()))
	assert.Equal(t, StateAccessDenied, in.State())
}

func TestReloadClearsDenialAndReinjects(t *testing.T) {
	in, handle := newTestInjector(t, false)
	require.NoError(t, in.Load(context.Background(), "https://example.com"))
	require.NoError(t, in.Activate(context.Background()))
	require.Equal(t, StateAccessDenied, in.State())

	// Next load cycle: page is now accessible.
	handle.mu.Lock()
	handle.accessible = true
	handle.mu.Unlock()

	require.NoError(t, in.Load(context.Background(), "https://example.com"))
	assert.Equal(t, StateLoaded, in.State())
	assert.Empty(t, in.Notice())

	require.NoError(t, in.Activate(context.Background()))
	assert.Equal(t, StateAccessGranted, in.State())
	assert.Equal(t, 1, handle.scriptCount("__siteforgeInstrumented"))
}

func TestReinjectionAfterReloadKeepsSingleBinding(t *testing.T) {
	in, handle := newTestInjector(t, true)

	for i := 0; i < 2; i++ {
		require.NoError(t, in.Load(context.Background(), "https://example.com"))
		require.NoError(t, in.Activate(context.Background()))
	}

	assert.Equal(t, 2, handle.scriptCount("__siteforgeInstrumented"), "handlers re-attach per load")
	assert.Len(t, handle.bindings, 1, "binding exposed once for the injector lifetime")
}

func TestSelectionSynthesizesComponent(t *testing.T) {
	in, handle := newTestInjector(t, true)
	require.NoError(t, in.Load(context.Background(), "https://example.com"))
	require.NoError(t, in.Activate(context.Background()))

	var got []schemas.Component
	in.OnSelect(func(c schemas.Component) { got = append(got, c) })

	handle.fireSelection(t, `{
		"tag": "div",
		"componentType": "container",
		"text": "Featured products",
		"styles": {"display": "flex", "backgroundColor": "rgb(255, 255, 255)"},
		"attributes": {"class": "grid featured"},
		"selector": ".grid",
		"elementIndex": 2,
		"parentTag": "main",
		"rect": {"x": 10, "y": 120, "width": 640, "height": 320}
	}`)

	require.Len(t, got, 1)
	c := got[0]
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "p1", c.ProjectID)
	assert.Equal(t, "container", c.ComponentType)
	assert.Equal(t, "div", c.Content.Tag)
	assert.Equal(t, "Featured products", c.Content.Text)
	assert.Equal(t, ".grid", c.Content.Selector)
	assert.Equal(t, "main", c.Content.ParentTag)
	assert.Equal(t, 2, c.Content.ElementIndex)
	require.NotNil(t, c.Content.Position)
	assert.Equal(t, 640.0, c.Content.Position.Width)
	assert.True(t, c.IsVisible)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestRepeatedSelectionsAreDistinctRecords(t *testing.T) {
	in, handle := newTestInjector(t, true)
	require.NoError(t, in.Load(context.Background(), "https://example.com"))
	require.NoError(t, in.Activate(context.Background()))

	var got []schemas.Component
	in.OnSelect(func(c schemas.Component) { got = append(got, c) })

	payload := `{"tag": "p", "componentType": "paragraph", "selector": "p:nth-child(1)", "parentTag": "body"}`
	handle.fireSelection(t, payload)
	handle.fireSelection(t, payload)

	require.Len(t, got, 2)
	assert.NotEqual(t, got[0].ID, got[1].ID, "re-selecting never merges records")
	assert.Equal(t, 0, got[0].Position)
	assert.Equal(t, 1, got[1].Position)
}

func TestSelectionPositionsContinueFromBase(t *testing.T) {
	in, handle := newTestInjector(t, true)
	require.NoError(t, in.Load(context.Background(), "https://example.com"))
	require.NoError(t, in.Activate(context.Background()))

	// A project with components at 0..2 already stored.
	in.SetPositionBase(3)

	var got []schemas.Component
	in.OnSelect(func(c schemas.Component) { got = append(got, c) })

	payload := `{"tag": "p", "componentType": "paragraph", "selector": "p:nth-child(1)", "parentTag": "body"}`
	handle.fireSelection(t, payload)
	handle.fireSelection(t, payload)

	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Position, "first capture appends after existing components")
	assert.Equal(t, 4, got[1].Position)
}

func TestSelectionNormalizesComponentType(t *testing.T) {
	in, handle := newTestInjector(t, true)
	require.NoError(t, in.Load(context.Background(), "https://example.com"))
	require.NoError(t, in.Activate(context.Background()))

	var got []schemas.Component
	in.OnSelect(func(c schemas.Component) { got = append(got, c) })

	handle.fireSelection(t, `{"tag": "input", "componentType": "form-element", "selector": "#email"}`)

	require.Len(t, got, 1)
	assert.Equal(t, "form_element", got[0].ComponentType)
}

func TestSelectionTruncatesLongText(t *testing.T) {
	in, handle := newTestInjector(t, true)
	require.NoError(t, in.Load(context.Background(), "https://example.com"))
	require.NoError(t, in.Activate(context.Background()))

	var got []schemas.Component
	in.OnSelect(func(c schemas.Component) { got = append(got, c) })

	long := strings.Repeat("x", 400)
	handle.fireSelection(t, `{"tag": "p", "componentType": "paragraph", "selector": "p", "text": "`+long+`"}`)

	require.Len(t, got, 1)
	assert.Len(t, got[0].Content.Text, 200)
}

func TestSelectionTruncationKeepsValidUTF8(t *testing.T) {
	in, handle := newTestInjector(t, true)
	require.NoError(t, in.Load(context.Background(), "https://example.com"))
	require.NoError(t, in.Activate(context.Background()))

	var got []schemas.Component
	in.OnSelect(func(c schemas.Component) { got = append(got, c) })

	// 100 three-byte runes: a 200-byte cut would land mid-rune.
	long := strings.Repeat("世", 100)
	handle.fireSelection(t, `{"tag": "p", "componentType": "paragraph", "selector": "p", "text": "`+long+`"}`)

	require.Len(t, got, 1)
	text := got[0].Content.Text
	assert.LessOrEqual(t, len(text), 200)
	assert.True(t, utf8.ValidString(text), "truncation must not split a rune")
}

func TestMalformedSelectionPayloadIsDiscarded(t *testing.T) {
	in, handle := newTestInjector(t, true)
	require.NoError(t, in.Load(context.Background(), "https://example.com"))
	require.NoError(t, in.Activate(context.Background()))

	var calls int
	in.OnSelect(func(schemas.Component) { calls++ })

	handle.fireSelection(t, `not json at all`)
	handle.fireSelection(t, `{"componentType": "container"}`)

	assert.Zero(t, calls)
}
