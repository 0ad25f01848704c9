package highlight

import "strings"

// DeletedLabel is shown in place of the replacement when a change removed code.
const DeletedLabel = "[Deleted]"

// Detail is the content of the panel shown for a highlighted span.
type Detail struct {
	Comment   string
	Before    string
	After     string
	HasBefore bool
	HasAfter  bool
	Deleted   bool
}

// DetailFor builds the panel content for a change. Comment falls back to
// Explanation; a change with OldCode but no replacement reports DeletedLabel
// as its after value.
func DetailFor(change *Change) Detail {
	if change == nil {
		return Detail{}
	}
	d := Detail{Comment: change.Comment}
	if d.Comment == "" {
		d.Comment = change.Explanation
	}
	if change.OldCode != "" {
		d.Before = change.OldCode
		d.HasBefore = true
	}
	switch {
	case strings.TrimSpace(change.NewCode) != "":
		d.After = change.NewCode
		d.HasAfter = true
	case change.OldCode != "":
		d.After = DeletedLabel
		d.HasAfter = true
		d.Deleted = true
	}
	return d
}

// Rect is a box in viewport coordinates.
type Rect struct {
	Top, Left, Right, Bottom float64
}

// Container describes the scrollable element hosting the code.
type Container struct {
	Bounds      Rect
	ScrollTop   float64
	ScrollLeft  float64
	ClientWidth float64
}

// Point is a position relative to the container's scrollable content.
type Point struct {
	Top, Left float64
}

const (
	// PanelWidth is the assumed width of the detail panel.
	PanelWidth = 350
	panelGap   = 10
)

// PlacePanel positions the detail panel next to a highlighted span. The
// panel goes to the right of the span, flips to the left when it would
// overflow the visible width, and pins to the right edge if the left side
// overflows too. Its top never rises above the current scroll offset.
func PlacePanel(span Rect, c Container) Point {
	top := span.Top - c.Bounds.Top + c.ScrollTop
	left := span.Right - c.Bounds.Left + c.ScrollLeft + panelGap

	if left+PanelWidth > c.ClientWidth+c.ScrollLeft {
		left = span.Left - c.Bounds.Left + c.ScrollLeft - PanelWidth - panelGap
		if left < c.ScrollLeft {
			left = c.ClientWidth + c.ScrollLeft - PanelWidth - panelGap
		}
	}
	if top < c.ScrollTop {
		top = c.ScrollTop + panelGap
	}
	return Point{Top: top, Left: left}
}
