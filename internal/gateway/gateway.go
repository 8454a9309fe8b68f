package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/roach88/scorebridge/internal/remote"
	"github.com/roach88/scorebridge/internal/result"
)

// Recognized settings keys.
const textKey = "text"

// imageKeys are the path-bearing settings keys, in priority order.
var imageKeys = []string{"file", "local_file"}

// CachedInput is the local, possibly stale, mirror of one remote field.
type CachedInput struct {
	Name     string
	Kind     string
	Settings remote.Settings // nil until the settings were read or written once
}

// ItemRef identifies a scene item by name or by remote id.
type ItemRef struct {
	id     int
	name   string
	byName bool
}

// ByName refers to a scene item by its name; it is resolved to an id
// through the scene's item list before writing.
func ByName(name string) ItemRef {
	return ItemRef{name: name, byName: true}
}

// ByID refers to a scene item by its remote id.
func ByID(id int) ItemRef {
	return ItemRef{id: id}
}

// String returns the name or "#id".
func (r ItemRef) String() string {
	if r.byName {
		return r.name
	}
	return fmt.Sprintf("#%d", r.id)
}

// Gateway mediates every call to a remote control surface.
//
// Thread-safety: all methods are safe for concurrent use. Cache mutation is
// serialized by the gate; uncached remote calls run concurrently.
type Gateway struct {
	remote         remote.Capability
	logger         *slog.Logger
	strict         bool
	defaultTimeout time.Duration
	connectTimeout time.Duration

	gate  chan struct{}           // one-slot semaphore guarding cache
	cache map[string]*CachedInput // guarded by gate

	connected atomic.Bool
	ready     atomic.Pointer[chan struct{}] // pending Connect waiter, if any
}

// New creates a Gateway over r and subscribes to its status notifications.
func New(r remote.Capability, opts ...Option) *Gateway {
	g := &Gateway{
		remote:         r,
		logger:         slog.Default(),
		defaultTimeout: DefaultTimeout,
		connectTimeout: DefaultConnectTimeout,
		gate:           make(chan struct{}, 1),
		cache:          make(map[string]*CachedInput),
	}
	for _, opt := range opts {
		opt(g)
	}
	r.Subscribe(g.onStatus)
	return g
}

// Strict reports whether the gateway panics on failure.
func (g *Gateway) Strict() bool {
	return g.strict
}

// IsConnected reports whether a session is active.
func (g *Gateway) IsConnected() bool {
	return g.connected.Load()
}

// onStatus tracks session state. Disconnection always drops the cache.
func (g *Gateway) onStatus(s remote.Status) {
	switch s {
	case remote.Connected:
		g.connected.Store(true)
		if ch := g.ready.Swap(nil); ch != nil {
			close(*ch)
		}
	case remote.Disconnected:
		g.connected.Store(false)
		g.Invalidate()
		g.logger.Info("control surface disconnected")
	}
}

// Connect opens a session and waits for the remote readiness signal.
// It is a no-op when already connected. A zero timeout uses the configured
// connect timeout.
func (g *Gateway) Connect(ctx context.Context, url, credential string, timeout time.Duration) error {
	return g.finish(g.connect(ctx, url, credential, timeout))
}

func (g *Gateway) connect(ctx context.Context, url, credential string, timeout time.Duration) error {
	const op = "connect"
	if g.connected.Load() {
		return nil
	}
	if url == "" {
		return result.New(result.InvalidArgument, op, "url is empty")
	}
	if timeout <= 0 {
		timeout = g.connectTimeout
	}

	ready := make(chan struct{})
	g.ready.Store(&ready)
	defer g.ready.CompareAndSwap(&ready, nil)

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := g.remote.Connect(callCtx, url, credential); err != nil {
		return classify(op, ctx, callCtx, err)
	}

	select {
	case <-ready:
	case <-callCtx.Done():
		if ctx.Err() == nil {
			return result.Wrap(result.Timeout, op,
				fmt.Sprintf("remote did not signal readiness within %s", timeout), callCtx.Err())
		}
		return classify(op, ctx, callCtx, callCtx.Err())
	}

	g.logger.Info("connected to control surface", "url", url)
	return nil
}

// Disconnect ends the session. The cache is invalidated even if the remote
// call fails.
func (g *Gateway) Disconnect(ctx context.Context) error {
	return g.finish(g.disconnect(ctx))
}

func (g *Gateway) disconnect(ctx context.Context) error {
	const op = "disconnect"
	callCtx, cancel := g.callContext(ctx, nil)
	defer cancel()

	err := g.remote.Disconnect(callCtx)
	g.connected.Store(false)
	g.Invalidate()
	if err != nil {
		return classify(op, ctx, callCtx, err)
	}
	return nil
}

// Refresh replaces the cache with the remote field list and returns the
// number of fields cached.
func (g *Gateway) Refresh(ctx context.Context, opts ...CallOption) (int, error) {
	n, err := g.refresh(ctx, opts)
	return n, g.finish(err, opts...)
}

func (g *Gateway) refresh(ctx context.Context, opts []CallOption) (int, error) {
	const op = "refresh"
	if err := g.requireSession(op); err != nil {
		return 0, err
	}
	if err := g.acquire(ctx, op); err != nil {
		return 0, err
	}
	defer g.release()

	callCtx, cancel := g.callContext(ctx, opts)
	defer cancel()

	fields, err := g.remote.ListFields(callCtx)
	if err != nil {
		return 0, classify(op, ctx, callCtx, err)
	}

	fresh := make(map[string]*CachedInput, len(fields))
	for _, f := range fields {
		fresh[f.Name] = &CachedInput{Name: f.Name, Kind: f.Kind}
	}
	g.cache = fresh

	g.logger.Debug("field cache refreshed", "fields", len(fresh))
	return len(fresh), nil
}

// Invalidate drops every cached field.
func (g *Gateway) Invalidate() {
	g.gate <- struct{}{}
	g.cache = make(map[string]*CachedInput)
	<-g.gate
}

// CacheLen returns the number of cached fields.
func (g *Gateway) CacheLen() int {
	g.gate <- struct{}{}
	defer g.release()
	return len(g.cache)
}

// Cached returns a copy of the cached entry for name, without touching the
// remote.
func (g *Gateway) Cached(name string) (CachedInput, bool) {
	g.gate <- struct{}{}
	defer g.release()
	entry, ok := g.cache[name]
	if !ok {
		return CachedInput{}, false
	}
	out := *entry
	out.Settings = entry.Settings.Clone()
	return out, true
}

// Fields returns the cached fields, refreshing first if the cache is empty.
func (g *Gateway) Fields(ctx context.Context, opts ...CallOption) ([]CachedInput, error) {
	out, err := g.fields(ctx, opts)
	return out, g.finish(err, opts...)
}

func (g *Gateway) fields(ctx context.Context, opts []CallOption) ([]CachedInput, error) {
	const op = "fields"
	if err := g.acquire(ctx, op); err != nil {
		return nil, err
	}
	empty := len(g.cache) == 0
	g.release()

	if empty {
		if _, err := g.refresh(ctx, opts); err != nil {
			return nil, err
		}
	}

	if err := g.acquire(ctx, op); err != nil {
		return nil, err
	}
	defer g.release()
	out := make([]CachedInput, 0, len(g.cache))
	for _, entry := range g.cache {
		out = append(out, CachedInput{Name: entry.Name, Kind: entry.Kind})
	}
	return out, nil
}

// FieldExists reports whether the remote exposes a field called name.
// An absent field is reported as a NOT_FOUND failure.
func (g *Gateway) FieldExists(ctx context.Context, name string, opts ...CallOption) (bool, error) {
	if _, err := g.lookup(ctx, "field_exists", name, opts); err != nil {
		return false, g.finish(err, opts...)
	}
	return true, nil
}

// FieldKind returns the kind tag of the named field.
func (g *Gateway) FieldKind(ctx context.Context, name string, opts ...CallOption) (string, error) {
	entry, err := g.lookup(ctx, "field_kind", name, opts)
	if err != nil {
		return "", g.finish(err, opts...)
	}
	return entry.Kind, nil
}

// lookup consults the cache, refreshing it once if it is empty.
func (g *Gateway) lookup(ctx context.Context, op, name string, opts []CallOption) (CachedInput, error) {
	if name == "" {
		return CachedInput{}, result.New(result.InvalidArgument, op, "field name is empty")
	}
	if err := g.acquire(ctx, op); err != nil {
		return CachedInput{}, err
	}
	entry, ok := g.cache[name]
	empty := len(g.cache) == 0
	g.release()

	if !ok && empty {
		if _, err := g.refresh(ctx, opts); err != nil {
			return CachedInput{}, err
		}
		if err := g.acquire(ctx, op); err != nil {
			return CachedInput{}, err
		}
		entry, ok = g.cache[name]
		g.release()
	}
	if !ok {
		return CachedInput{}, result.New(result.NotFound, op, fmt.Sprintf("field %q not found", name))
	}
	return CachedInput{Name: entry.Name, Kind: entry.Kind}, nil
}

// FieldSettings reads the current settings of a field and refreshes the
// cached copy.
func (g *Gateway) FieldSettings(ctx context.Context, name string, opts ...CallOption) (remote.Settings, error) {
	s, err := g.fieldSettings(ctx, name, opts)
	return s, g.finish(err, opts...)
}

func (g *Gateway) fieldSettings(ctx context.Context, name string, opts []CallOption) (remote.Settings, error) {
	const op = "get_settings"
	if _, err := g.lookup(ctx, op, name, opts); err != nil {
		return nil, err
	}
	if err := g.requireSession(op); err != nil {
		return nil, err
	}

	callCtx, cancel := g.callContext(ctx, opts)
	defer cancel()
	settings, err := g.remote.GetFieldSettings(callCtx, name)
	if err != nil {
		return nil, classify(op, ctx, callCtx, err)
	}

	g.storeSettings(ctx, name, settings, false)
	return settings.Clone(), nil
}

// SetFieldSettings writes values to a field. With overlay set the values are
// merged into the existing settings; otherwise they replace them.
func (g *Gateway) SetFieldSettings(ctx context.Context, name string, values remote.Settings, overlay bool, opts ...CallOption) error {
	return g.finish(g.setFieldSettings(ctx, name, values, overlay, opts), opts...)
}

func (g *Gateway) setFieldSettings(ctx context.Context, name string, values remote.Settings, overlay bool, opts []CallOption) error {
	const op = "set_settings"
	if _, err := g.lookup(ctx, op, name, opts); err != nil {
		return err
	}
	if err := g.requireSession(op); err != nil {
		return err
	}

	callCtx, cancel := g.callContext(ctx, opts)
	defer cancel()
	if err := g.remote.SetFieldSettings(callCtx, name, values, overlay); err != nil {
		return classify(op, ctx, callCtx, err)
	}

	g.storeSettings(ctx, name, values, overlay)
	return nil
}

// storeSettings writes settings back into the cache entry under the gate.
// If the gate cannot be taken before ctx ends the cache is left stale.
func (g *Gateway) storeSettings(ctx context.Context, name string, values remote.Settings, overlay bool) {
	if err := g.acquire(ctx, "store_settings"); err != nil {
		return
	}
	defer g.release()

	entry, ok := g.cache[name]
	if !ok {
		return
	}
	if overlay && entry.Settings != nil {
		for k, v := range values {
			entry.Settings[k] = v
		}
		return
	}
	entry.Settings = values.Clone()
}

// SetText writes the "text" key of a field. Fields without that key fail
// with TYPE_MISMATCH and are not written.
func (g *Gateway) SetText(ctx context.Context, name, value string, opts ...CallOption) error {
	return g.finish(g.setText(ctx, name, value, opts), opts...)
}

func (g *Gateway) setText(ctx context.Context, name, value string, opts []CallOption) error {
	const op = "set_text"
	settings, err := g.fieldSettings(ctx, name, opts)
	if err != nil {
		return err
	}
	if _, ok := settings[textKey]; !ok {
		return result.New(result.TypeMismatch, op, fmt.Sprintf("field %q has no %q setting", name, textKey))
	}
	return g.setFieldSettings(ctx, name, remote.Settings{textKey: value}, true, opts)
}

// SetImageFile points an image field at path, using the first recognized
// path key the field exposes.
func (g *Gateway) SetImageFile(ctx context.Context, name, path string, opts ...CallOption) error {
	return g.finish(g.setImageFile(ctx, name, path, opts), opts...)
}

func (g *Gateway) setImageFile(ctx context.Context, name, path string, opts []CallOption) error {
	const op = "set_image"
	settings, err := g.fieldSettings(ctx, name, opts)
	if err != nil {
		return err
	}
	for _, key := range imageKeys {
		if _, ok := settings[key]; ok {
			return g.setFieldSettings(ctx, name, remote.Settings{key: path}, true, opts)
		}
	}
	return result.New(result.TypeMismatch, op, fmt.Sprintf("field %q has no image path setting", name))
}

// Scenes lists the remote scene names. Scene names are never cached.
func (g *Gateway) Scenes(ctx context.Context, opts ...CallOption) ([]string, error) {
	scenes, err := g.scenes(ctx, "list_scenes", opts)
	return scenes, g.finish(err, opts...)
}

func (g *Gateway) scenes(ctx context.Context, op string, opts []CallOption) ([]string, error) {
	if err := g.requireSession(op); err != nil {
		return nil, err
	}
	callCtx, cancel := g.callContext(ctx, opts)
	defer cancel()
	scenes, err := g.remote.ListScenes(callCtx)
	if err != nil {
		return nil, classify(op, ctx, callCtx, err)
	}
	return scenes, nil
}

// SwitchScene switches the program output to the named scene after checking
// it exists.
func (g *Gateway) SwitchScene(ctx context.Context, name string, opts ...CallOption) error {
	return g.finish(g.switchScene(ctx, name, opts), opts...)
}

func (g *Gateway) switchScene(ctx context.Context, name string, opts []CallOption) error {
	const op = "switch_scene"
	if name == "" {
		return result.New(result.InvalidArgument, op, "scene name is empty")
	}
	scenes, err := g.scenes(ctx, op, opts)
	if err != nil {
		return err
	}
	if !slices.Contains(scenes, name) {
		return result.New(result.NotFound, op, fmt.Sprintf("scene %q not found", name))
	}

	callCtx, cancel := g.callContext(ctx, opts)
	defer cancel()
	if err := g.remote.SwitchScene(callCtx, name); err != nil {
		return classify(op, ctx, callCtx, err)
	}
	return nil
}

// SetVisibility shows or hides a scene item.
func (g *Gateway) SetVisibility(ctx context.Context, scene string, item ItemRef, visible bool, opts ...CallOption) error {
	return g.finish(g.setVisibility(ctx, scene, item, visible, opts), opts...)
}

func (g *Gateway) setVisibility(ctx context.Context, scene string, item ItemRef, visible bool, opts []CallOption) error {
	const op = "set_visibility"
	if scene == "" {
		return result.New(result.InvalidArgument, op, "scene name is empty")
	}
	if item.byName && item.name == "" {
		return result.New(result.InvalidArgument, op, "item name is empty")
	}
	if err := g.requireSession(op); err != nil {
		return err
	}

	id := item.id
	if item.byName {
		callCtx, cancel := g.callContext(ctx, opts)
		items, err := g.remote.ListSceneItems(callCtx, scene)
		if err != nil {
			err = classify(op, ctx, callCtx, err)
			cancel()
			return err
		}
		cancel()

		found := false
		for _, it := range items {
			if it.Name == item.name {
				id, found = it.ID, true
				break
			}
		}
		if !found {
			return result.New(result.NotFound, op, fmt.Sprintf("item %q not found in scene %q", item.name, scene))
		}
	}

	callCtx, cancel := g.callContext(ctx, opts)
	defer cancel()
	if err := g.remote.SetItemEnabled(callCtx, scene, id, visible); err != nil {
		return classify(op, ctx, callCtx, err)
	}
	return nil
}

func (g *Gateway) requireSession(op string) error {
	if !g.connected.Load() {
		return result.New(result.NotConnected, op, "no active session")
	}
	return nil
}

// acquire takes the cache gate or gives up when ctx ends.
func (g *Gateway) acquire(ctx context.Context, op string) error {
	select {
	case g.gate <- struct{}{}:
		return nil
	case <-ctx.Done():
		return classify(op, ctx, ctx, ctx.Err())
	}
}

func (g *Gateway) release() {
	<-g.gate
}

// callContext derives the per-call context from the caller's.
func (g *Gateway) callContext(ctx context.Context, opts []CallOption) (context.Context, context.CancelFunc) {
	cfg := callConfig{timeout: g.defaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, cfg.timeout)
}

// classify maps a raw fault into the taxonomy. parent is the caller's
// context and call the derived per-call context: a deadline hit only on
// call is the gateway's own timeout, anything ending parent is the caller's
// cancellation.
func classify(op string, parent, call context.Context, err error) error {
	var re *result.Error
	if errors.As(err, &re) {
		return re
	}
	if perr := parent.Err(); perr != nil {
		return result.Wrap(result.Canceled, op, "operation cancelled by caller", perr)
	}
	if errors.Is(call.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return result.Wrap(result.Timeout, op, "remote call deadline exceeded", err)
	}
	return result.Wrap(result.ObsError, op, "remote request failed", err)
}

// finish is the public boundary: it logs the failure once and applies the
// strict/lenient policy.
func (g *Gateway) finish(err error, opts ...CallOption) error {
	if err == nil {
		return nil
	}
	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	var e *result.Error
	if !errors.As(err, &e) {
		e = result.Wrap(result.ObsError, "", "unclassified failure", err)
	}

	level := slog.LevelError
	switch e.Code {
	case result.InvalidArgument, result.NotFound, result.TypeMismatch, result.NotConnected, result.Canceled:
		level = slog.LevelWarn
	}
	g.logger.Log(context.Background(), level, "gateway call failed",
		"op", e.Op,
		"code", e.Code,
		"error", e.Error(),
	)

	if g.strict && !cfg.lenient {
		panic(e)
	}
	return e
}

// Recover converts a strict-mode gateway panic back into an error.
// It must be deferred directly:
//
//	defer gateway.Recover(&err)
//
// Panics that do not carry a *result.Error are re-raised.
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*result.Error); ok {
		*errp = e
		return
	}
	panic(r)
}
