package models

import "encoding/json"

// NotificationKind tags a renderer notification.
type NotificationKind string

const (
	NotifyVisibility NotificationKind = "visibility"
	NotifyStyle      NotificationKind = "style"
)

// Style is the full paint object for a layer: the color expression under its
// render-type property plus the layer's static paint properties. Layout rides
// along so the renderer can reapply it with the paint.
type Style struct {
	ColorProperty string
	Color         Expression
	Paint         map[string]any
	Layout        map[string]any
}

// Properties flattens the style into the renderer's paint property map.
func (s Style) Properties() map[string]any {
	props := make(map[string]any, len(s.Paint)+1)
	for k, v := range s.Paint {
		props[k] = v
	}
	props[s.ColorProperty] = s.Color.Compile()
	return props
}

func (s Style) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Properties())
}

// Notification is one instruction for the renderer. Visible is set for
// visibility notifications, Style for style notifications.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	LayerID string           `json:"layer_id"`
	Visible *bool            `json:"visible,omitempty"`
	Style   *Style           `json:"style,omitempty"`
	Layout  map[string]any   `json:"layout,omitempty"`
}

// VisibilityChanged builds a visibility notification.
func VisibilityChanged(layerID string, visible bool) Notification {
	return Notification{Kind: NotifyVisibility, LayerID: layerID, Visible: &visible}
}

// StyleChanged builds a style notification.
func StyleChanged(layerID string, style Style) Notification {
	n := Notification{Kind: NotifyStyle, LayerID: layerID, Style: &style}
	if len(style.Layout) > 0 {
		n.Layout = style.Layout
	}
	return n
}

// Batch is the ordered output of one controller transition. Visibility
// notifications for a layer always precede its style notification.
type Batch []Notification
