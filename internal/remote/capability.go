// Package remote declares the capability a broadcast-graphics control
// surface must offer, and provides an in-process implementation of it.
//
// Adapters for a concrete service parse their wire responses into the
// statically typed shapes below before anything reaches the gateway; no
// reflective field extraction happens above this boundary.
package remote

import "context"

// Settings is the key/value settings blob of one field.
type Settings map[string]any

// Clone returns a shallow copy of s.
func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// FieldInfo names one remotely controlled field and its kind tag
// ("text_gdiplus_v2", "image_source", ...).
type FieldInfo struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
}

// SceneItem is one item placed in a scene.
type SceneItem struct {
	ID      int    `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// Status is a connection state notification.
type Status int

const (
	// Connected is raised once the remote peer is ready for requests.
	Connected Status = iota + 1
	// Disconnected is raised when the session ends for any reason.
	Disconnected
)

// String returns "connected" or "disconnected".
func (s Status) String() string {
	switch s {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// StatusListener receives connection notifications. Listeners must not
// block; they may be called from the adapter's I/O goroutine.
type StatusListener func(Status)

// Capability is what the gateway needs from a control surface.
//
// Connect returns once the request has been issued; readiness is signalled
// separately through a Connected notification.
type Capability interface {
	Connect(ctx context.Context, url, credential string) error
	Disconnect(ctx context.Context) error
	ListFields(ctx context.Context) ([]FieldInfo, error)
	GetFieldSettings(ctx context.Context, name string) (Settings, error)
	SetFieldSettings(ctx context.Context, name string, settings Settings, overlay bool) error
	ListSceneItems(ctx context.Context, scene string) ([]SceneItem, error)
	SetItemEnabled(ctx context.Context, scene string, id int, enabled bool) error
	SwitchScene(ctx context.Context, scene string) error
	ListScenes(ctx context.Context) ([]string, error)
	Subscribe(listener StatusListener)
}
