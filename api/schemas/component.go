// api/schemas/component.go
package schemas

import "time"

// ComponentType is the classification assigned to an extracted element.
// The vocabulary is open-world: unknown tags fall back to TypeElement.
type ComponentType string

const (
	TypeHeader      ComponentType = "header"
	TypeNavigation  ComponentType = "navigation"
	TypeFooter      ComponentType = "footer"
	TypeHero        ComponentType = "hero"
	TypeMainContent ComponentType = "main-content"
	TypeSection     ComponentType = "section"
	TypeArticle     ComponentType = "article"
	TypeSidebar     ComponentType = "sidebar"
	TypeHeading     ComponentType = "heading"
	TypeParagraph   ComponentType = "paragraph"
	TypeImage       ComponentType = "image"
	TypeLink        ComponentType = "link"
	TypeButton      ComponentType = "button"
	TypeForm        ComponentType = "form"
	TypeFormElement ComponentType = "form-element"
	TypeList        ComponentType = "list"
	TypeCard        ComponentType = "card"
	TypeContainer   ComponentType = "container"
	TypeText        ComponentType = "text"
	TypeElement     ComponentType = "element"
)

// BoundingBox holds the rendered geometry of an element at selection time.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ComponentContent is the structured payload describing the source element.
// The JSON keys mirror the persisted document shape; Attributes stays an open
// string map because arbitrary HTML attributes are inherently open-ended.
type ComponentContent struct {
	Tag          string            `json:"tag"`
	Text         string            `json:"content"`
	OriginalHTML string            `json:"originalHtml,omitempty"`
	Styles       map[string]string `json:"styles,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	Selector     string            `json:"selector"`
	XPath        string            `json:"xpath,omitempty"`
	Position     *BoundingBox      `json:"position,omitempty"`
	ElementIndex int               `json:"elementIndex"`
	ParentTag    string            `json:"parentTag,omitempty"`
}

// Component is one editable representation of a visual element from a source
// page. Styles holds user-applied overrides and is distinct from
// Content.Styles, which holds what was extracted from the page itself.
type Component struct {
	ID            string            `json:"id"`
	ProjectID     string            `json:"project_id"`
	ComponentType string            `json:"component_type"`
	Content       ComponentContent  `json:"content"`
	Position      int               `json:"position"`
	Styles        map[string]string `json:"styles,omitempty"`
	IsVisible     bool              `json:"is_visible"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ComponentDraft is a pre-persistence component. The store assigns the ID and
// timestamps on insert.
type ComponentDraft struct {
	ProjectID     string            `json:"project_id"`
	ComponentType string            `json:"component_type"`
	Content       ComponentContent  `json:"content"`
	Position      int               `json:"position"`
	Styles        map[string]string `json:"styles,omitempty"`
	IsVisible     bool              `json:"is_visible"`
}

// ComponentPatch is a partial update. Nil fields are left untouched. Content
// and Styles are replaced whole, not deep-merged: callers must pass the full
// merged sub-map.
type ComponentPatch struct {
	Content   *ComponentContent  `json:"content,omitempty"`
	Styles    *map[string]string `json:"styles,omitempty"`
	IsVisible *bool              `json:"is_visible,omitempty"`
}

// ReorderEntry assigns a new position to a component during a reorder batch.
type ReorderEntry struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}
