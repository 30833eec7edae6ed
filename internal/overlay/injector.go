// internal/overlay/injector.go
package overlay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/karstfell/siteforge/api/schemas"
	"github.com/karstfell/siteforge/internal/config"
	"github.com/karstfell/siteforge/internal/extract"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// State tracks the injection lifecycle for one document load.
type State int

const (
	StateUnloaded State = iota
	StateLoaded
	StateAccessGranted
	// StateAccessDenied is terminal for the current load cycle. A new Load
	// starts a fresh cycle; there is no retry loop within one.
	StateAccessDenied
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateAccessGranted:
		return "access_granted"
	case StateAccessDenied:
		return "access_denied"
	default:
		return "unknown"
	}
}

// accessDeniedNotice is shown inside the page when scripting access is
// unavailable. Editing continues through the sidebar in that case.
const accessDeniedNotice = "Interactive editing unavailable for this page. Use the sidebar to manage components."

// Injector drives the selection overlay inside a foreign document. It owns
// the state machine, the page instrumentation, and the translation of raw
// selection payloads into component records.
type Injector struct {
	cfg       config.OverlayConfig
	handle    DocumentHandle
	log       *zap.Logger
	projectID string

	mu            sync.Mutex
	state         State
	notice        string
	onSelect      schemas.SelectionCallback
	bindingActive bool
	positionBase  int
	selections    int
}

// NewInjector builds an injector over an already constructed handle. The
// handle's lifetime belongs to the caller.
func NewInjector(cfg config.OverlayConfig, handle DocumentHandle, projectID string, logger *zap.Logger) *Injector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Injector{
		cfg:       cfg,
		handle:    handle,
		projectID: projectID,
		log:       logger.Named("overlay"),
		state:     StateUnloaded,
	}
}

// OnSelect registers the callback invoked with each synthesized component.
func (in *Injector) OnSelect(cb schemas.SelectionCallback) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.onSelect = cb
}

// SetPositionBase sets the position of the next selection. Callers that
// persist selections into a project with existing components seed this with
// the current component count so positions stay unique and contiguous.
func (in *Injector) SetPositionBase(n int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.positionBase = n
	in.selections = 0
}

// State returns the current lifecycle state.
func (in *Injector) State() State {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

// Notice returns the user-facing message set on access denial, empty
// otherwise.
func (in *Injector) Notice() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.notice
}

// Load navigates to the URL and waits for the document. Each call begins a
// fresh load cycle, clearing a previous denial.
func (in *Injector) Load(ctx context.Context, url string) error {
	if err := in.handle.Navigate(ctx, url); err != nil {
		return fmt.Errorf("overlay load failed: %w", err)
	}
	if err := in.handle.WaitLoaded(ctx); err != nil {
		return fmt.Errorf("overlay load failed: %w", err)
	}

	in.mu.Lock()
	in.state = StateLoaded
	in.notice = ""
	in.mu.Unlock()

	in.log.Info("Document loaded", zap.String("url", url))
	return nil
}

// Activate probes document access and, when granted, injects the style block
// and the interaction instrumentation. Denied access is not an error: the
// injector parks in StateAccessDenied, surfaces a notice, and leaves the rest
// of the editing flow intact.
func (in *Injector) Activate(ctx context.Context) error {
	in.mu.Lock()
	switch in.state {
	case StateAccessDenied:
		// Terminal for this load cycle.
		in.mu.Unlock()
		return nil
	case StateLoaded, StateAccessGranted:
	default:
		in.mu.Unlock()
		return fmt.Errorf("cannot activate overlay from state %s", in.state)
	}
	in.mu.Unlock()

	var accessible bool
	if err := in.handle.Evaluate(ctx, accessProbeScript, &accessible); err != nil || !accessible {
		in.mu.Lock()
		in.state = StateAccessDenied
		in.notice = accessDeniedNotice
		in.mu.Unlock()

		in.log.Warn("Document access denied, overlay disabled for this load", zap.Error(err))
		// Best effort; the document may reject even the banner.
		_ = in.handle.Evaluate(ctx, noticeScript(accessDeniedNotice), nil)
		return nil
	}

	if err := in.ensureBinding(ctx); err != nil {
		return err
	}
	if err := in.handle.Evaluate(ctx, overlayStyleScript, nil); err != nil {
		return fmt.Errorf("failed to inject overlay styles: %w", err)
	}
	script := instrumentationScript(in.cfg.MinSelectableWidth, in.cfg.MinSelectableHeight)
	if err := in.handle.Evaluate(ctx, script, nil); err != nil {
		return fmt.Errorf("failed to inject overlay instrumentation: %w", err)
	}

	in.mu.Lock()
	in.state = StateAccessGranted
	in.mu.Unlock()

	in.log.Info("Overlay instrumentation active")
	return nil
}

// ensureBinding exposes the selection binding once per injector. The binding
// persists across navigations; only the per-document handlers re-attach.
func (in *Injector) ensureBinding(ctx context.Context) error {
	in.mu.Lock()
	active := in.bindingActive
	in.mu.Unlock()
	if active {
		return nil
	}

	if err := in.handle.ExposeCallback(ctx, selectionBinding, in.handleSelection); err != nil {
		return fmt.Errorf("failed to expose selection binding: %w", err)
	}

	in.mu.Lock()
	in.bindingActive = true
	in.mu.Unlock()
	return nil
}

// selectionPayload mirrors the JSON the instrumentation posts per click.
type selectionPayload struct {
	Tag           string            `json:"tag"`
	ComponentType string            `json:"componentType"`
	Text          string            `json:"text"`
	Styles        map[string]string `json:"styles"`
	Attributes    map[string]string `json:"attributes"`
	Selector      string            `json:"selector"`
	ElementIndex  int               `json:"elementIndex"`
	ParentTag     string            `json:"parentTag"`
	Rect          struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"rect"`
}

func (in *Injector) handleSelection(payload string) {
	var sel selectionPayload
	if err := json.UnmarshalFromString(payload, &sel); err != nil {
		in.log.Error("Discarding malformed selection payload", zap.Error(err))
		return
	}
	if sel.Tag == "" {
		in.log.Error("Discarding selection payload without a tag")
		return
	}

	in.mu.Lock()
	cb := in.onSelect
	position := in.positionBase + in.selections
	in.selections++
	in.mu.Unlock()

	component := in.synthesize(sel, position)
	in.log.Info("Element selected",
		zap.String("selector", component.Content.Selector),
		zap.String("component_type", component.ComponentType))

	if cb != nil {
		cb(component)
	}
}

// synthesize turns a raw selection into a fresh component record. Every
// click yields a new record; reconciliation with previous selections of the
// same element is the consumer's concern.
func (in *Injector) synthesize(sel selectionPayload, position int) schemas.Component {
	now := time.Now().UTC()
	text := extract.Truncate(sel.Text, 200)

	return schemas.Component{
		ID:            uuid.NewString(),
		ProjectID:     in.projectID,
		ComponentType: extract.NormalizeType(sel.ComponentType),
		Content: schemas.ComponentContent{
			Tag:        sel.Tag,
			Text:       text,
			Styles:     sel.Styles,
			Attributes: sel.Attributes,
			Selector:   sel.Selector,
			Position: &schemas.BoundingBox{
				X:      sel.Rect.X,
				Y:      sel.Rect.Y,
				Width:  sel.Rect.Width,
				Height: sel.Rect.Height,
			},
			ElementIndex: sel.ElementIndex,
			ParentTag:    sel.ParentTag,
		},
		Position:  position,
		IsVisible: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
