package remote

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Operation names used for fault injection and call counting.
const (
	OpConnect        = "connect"
	OpDisconnect     = "disconnect"
	OpListFields     = "list_fields"
	OpGetSettings    = "get_settings"
	OpSetSettings    = "set_settings"
	OpListSceneItems = "list_scene_items"
	OpSetItemEnabled = "set_item_enabled"
	OpSwitchScene    = "switch_scene"
	OpListScenes     = "list_scenes"
)

// ErrNotConnected is returned by Memory when a request arrives without a session.
var ErrNotConnected = errors.New("remote: not connected")

// Write is one recorded mutation of the control surface.
// Settings writes produce one Write per key, sorted by key.
type Write struct {
	Op     string `json:"op"`
	Target string `json:"target"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
}

type memField struct {
	kind     string
	settings Settings
}

type faultKey struct {
	op     string
	target string
}

// Memory is an in-process control surface.
//
// It holds fields, scenes and scene items in memory, records every write in
// order and can inject faults, latency and a missing readiness signal.
// Safe for concurrent use.
type Memory struct {
	mu        sync.Mutex
	connected bool
	fields    map[string]*memField
	order     []string
	scenes    []string
	items     map[string][]SceneItem
	current   string
	failures  map[faultKey]error
	latency   time.Duration
	silent    bool
	listeners []StatusListener
	writes    []Write
	calls     map[string]int
}

// NewMemory creates an empty, disconnected control surface.
func NewMemory() *Memory {
	return &Memory{
		fields:   make(map[string]*memField),
		items:    make(map[string][]SceneItem),
		failures: make(map[faultKey]error),
		calls:    make(map[string]int),
	}
}

// AddField registers a field. Re-adding a name replaces it.
func (m *Memory) AddField(name, kind string, settings Settings) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fields[name]; !ok {
		m.order = append(m.order, name)
	}
	m.fields[name] = &memField{kind: kind, settings: settings.Clone()}
	return m
}

// AddScene registers a scene and its items.
func (m *Memory) AddScene(name string, items ...SceneItem) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.scenes, name) {
		m.scenes = append(m.scenes, name)
	}
	m.items[name] = slices.Clone(items)
	return m
}

// Fail makes every call of op against target return err.
// An empty target matches any target of that op.
func (m *Memory) Fail(op, target string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[faultKey{op: op, target: target}] = err
}

// ClearFailures removes every injected fault.
func (m *Memory) ClearFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = make(map[faultKey]error)
}

// SetLatency delays every call by d, or until the caller's context ends.
func (m *Memory) SetLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency = d
}

// SuppressReadiness makes Connect succeed without ever raising Connected.
func (m *Memory) SuppressReadiness(suppress bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.silent = suppress
}

// Writes returns the recorded writes in order.
func (m *Memory) Writes() []Write {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.writes)
}

// ResetWrites clears the recorded writes.
func (m *Memory) ResetWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = nil
}

// Calls returns how many times op was invoked.
func (m *Memory) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Settings returns a copy of a field's settings.
func (m *Memory) Settings(name string) (Settings, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fields[name]
	if !ok {
		return nil, false
	}
	return f.settings.Clone(), true
}

// Text returns a field's "text" setting.
func (m *Memory) Text(name string) (string, bool) {
	s, ok := m.Settings(name)
	if !ok {
		return "", false
	}
	text, ok := s["text"].(string)
	return text, ok
}

// CurrentScene returns the scene last switched to.
func (m *Memory) CurrentScene() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Item returns a scene item by id.
func (m *Memory) Item(scene string, id int) (SceneItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items[scene] {
		if it.ID == id {
			return it, true
		}
	}
	return SceneItem{}, false
}

// IsConnected reports whether a session is open.
func (m *Memory) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// DropConnection simulates the peer closing the session.
func (m *Memory) DropConnection() {
	m.mu.Lock()
	was := m.connected
	m.connected = false
	m.mu.Unlock()
	if was {
		m.notify(Disconnected)
	}
}

// Subscribe implements Capability.
func (m *Memory) Subscribe(listener StatusListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, listener)
}

// Connect implements Capability.
func (m *Memory) Connect(ctx context.Context, url, credential string) error {
	if err := m.begin(ctx, OpConnect, url); err != nil {
		return err
	}
	m.mu.Lock()
	m.connected = true
	silent := m.silent
	m.mu.Unlock()
	if !silent {
		m.notify(Connected)
	}
	return nil
}

// Disconnect implements Capability.
func (m *Memory) Disconnect(ctx context.Context) error {
	if err := m.begin(ctx, OpDisconnect, ""); err != nil {
		return err
	}
	m.DropConnection()
	return nil
}

// ListFields implements Capability.
func (m *Memory) ListFields(ctx context.Context) ([]FieldInfo, error) {
	if err := m.request(ctx, OpListFields, ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]FieldInfo, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, FieldInfo{Name: name, Kind: m.fields[name].kind})
	}
	return out, nil
}

// GetFieldSettings implements Capability.
func (m *Memory) GetFieldSettings(ctx context.Context, name string) (Settings, error) {
	if err := m.request(ctx, OpGetSettings, name); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fields[name]
	if !ok {
		return nil, fmt.Errorf("remote: no input named %q", name)
	}
	return f.settings.Clone(), nil
}

// SetFieldSettings implements Capability. With overlay set, the given keys
// are merged into the existing settings; otherwise they replace them.
func (m *Memory) SetFieldSettings(ctx context.Context, name string, settings Settings, overlay bool) error {
	if err := m.request(ctx, OpSetSettings, name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fields[name]
	if !ok {
		return fmt.Errorf("remote: no input named %q", name)
	}
	if overlay && f.settings != nil {
		for k, v := range settings {
			f.settings[k] = v
		}
	} else {
		f.settings = settings.Clone()
	}

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.writes = append(m.writes, Write{Op: OpSetSettings, Target: name, Key: k, Value: fmt.Sprint(settings[k])})
	}
	return nil
}

// ListSceneItems implements Capability.
func (m *Memory) ListSceneItems(ctx context.Context, scene string) ([]SceneItem, error) {
	if err := m.request(ctx, OpListSceneItems, scene); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	items, ok := m.items[scene]
	if !ok {
		return nil, fmt.Errorf("remote: no scene named %q", scene)
	}
	return slices.Clone(items), nil
}

// SetItemEnabled implements Capability.
func (m *Memory) SetItemEnabled(ctx context.Context, scene string, id int, enabled bool) error {
	if err := m.request(ctx, OpSetItemEnabled, scene); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items[scene]
	for i := range items {
		if items[i].ID == id {
			items[i].Enabled = enabled
			m.writes = append(m.writes, Write{
				Op:     OpSetItemEnabled,
				Target: scene,
				Key:    strconv.Itoa(id),
				Value:  strconv.FormatBool(enabled),
			})
			return nil
		}
	}
	return fmt.Errorf("remote: no item %d in scene %q", id, scene)
}

// SwitchScene implements Capability.
func (m *Memory) SwitchScene(ctx context.Context, scene string) error {
	if err := m.request(ctx, OpSwitchScene, scene); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.scenes, scene) {
		return fmt.Errorf("remote: no scene named %q", scene)
	}
	m.current = scene
	m.writes = append(m.writes, Write{Op: OpSwitchScene, Target: scene})
	return nil
}

// ListScenes implements Capability.
func (m *Memory) ListScenes(ctx context.Context) ([]string, error) {
	if err := m.request(ctx, OpListScenes, ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.scenes), nil
}

// request is begin plus the session precondition.
func (m *Memory) request(ctx context.Context, op, target string) error {
	if err := m.begin(ctx, op, target); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrNotConnected
	}
	return nil
}

// begin counts the call, applies latency and returns any injected fault.
func (m *Memory) begin(ctx context.Context, op, target string) error {
	m.mu.Lock()
	m.calls[op]++
	latency := m.latency
	fault := m.failures[faultKey{op: op, target: target}]
	if fault == nil {
		fault = m.failures[faultKey{op: op}]
	}
	m.mu.Unlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fault
}

func (m *Memory) notify(s Status) {
	m.mu.Lock()
	listeners := slices.Clone(m.listeners)
	m.mu.Unlock()
	for _, l := range listeners {
		l(s)
	}
}
