package tape

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/tape/spatial/core"
	"github.com/gekko3d/tape/spatial/geom"
	"github.com/gekko3d/tape/spatial/grid"
	"github.com/gekko3d/tape/spatial/queue"
)

// EngineOptions are the collaborators and settings of an Engine. Session,
// Scene and a granted Permission are required; the rest have defaults.
type EngineOptions struct {
	Config     Config
	Session    TrackingSession
	Scene      SceneView
	Permission *CameraPermission
	Haptics    Haptics
	Messenger  Messenger
	Logger     Logger
	Clock      Clock
}

// Engine places points on tracked surfaces and measures between them.
//
// Public methods are called on the foreground goroutine, the one ticking the
// App. Scene-graph structure for points, the reticle and anchors is changed on
// the serial update queue.
type Engine struct {
	cfg         Config
	log         Logger
	session     TrackingSession
	scene       SceneView
	haptics     Haptics
	messages    Messenger
	permission  *CameraPermission
	clock       Clock
	updates     *queue.Serial
	foreground  *queue.Mailbox
	registry    *Registry
	focus       *FocusIndicator
	interaction *Interaction

	// foreground only
	preview         *core.Segment
	previewAttached bool
	nearby          *grid.Grid
	// reticleTarget is where the last UpdateFocus sent the reticle. The reticle
	// itself moves on the update queue, one step behind.
	reticleTarget mgl32.Vec3
	reticleKnown  bool

	restartAvailable atomic.Bool
	cooldownMu       sync.Mutex
	restartAt        time.Time
}

func NewEngine(opts EngineOptions) (*Engine, error) {
	if opts.Session == nil || opts.Scene == nil {
		return nil, fmt.Errorf("new engine: session and scene are required: %w", ErrMissingCollaborator)
	}
	if opts.Permission == nil || !opts.Permission.Granted() {
		return nil, fmt.Errorf("new engine: %w", ErrCameraPermission)
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = NewNopLogger()
	}
	if opts.Haptics == nil {
		opts.Haptics = nopHaptics{}
	}
	if opts.Messenger == nil {
		opts.Messenger = LogMessenger{Log: opts.Logger}
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}

	updates := queue.NewSerial("tape.scene-updates")
	e := &Engine{
		cfg:         opts.Config,
		log:         opts.Logger,
		session:     opts.Session,
		scene:       opts.Scene,
		haptics:     opts.Haptics,
		messages:    opts.Messenger,
		permission:  opts.Permission,
		clock:       opts.Clock,
		updates:     updates,
		foreground:  queue.NewMailbox(),
		registry:    NewRegistry(opts.Scene, updates, opts.Logger),
		focus:       NewFocusIndicator(opts.Config.FocusHoverDistance),
		interaction: NewInteraction(defaultDragBuffer),
		nearby:      grid.New(4 * opts.Config.SnapRadius),
	}
	e.restartAvailable.Store(true)
	e.scene.AddChild(e.focus)
	return e, nil
}

func (e *Engine) Registry() *Registry       { return e.registry }
func (e *Engine) Focus() *FocusIndicator    { return e.focus }
func (e *Engine) Interaction() *Interaction { return e.interaction }
func (e *Engine) Config() Config            { return e.cfg }

// Foreground is the mailbox of work that must run on the goroutine ticking
// the App. MeasurementModule drains it every frame.
func (e *Engine) Foreground() *queue.Mailbox    { return e.foreground }
func (e *Engine) Permission() *CameraPermission { return e.permission }

// IsRestartAvailable reports whether the cooldown after the last restart has
// elapsed on the engine clock.
func (e *Engine) IsRestartAvailable() bool {
	e.expireRestartCooldown(e.clock.Now())
	return e.restartAvailable.Load()
}

// Close stops the update queue after letting queued work finish.
func (e *Engine) Close() {
	e.updates.Close()
}

// Settle waits until the update queue and the foreground mailbox are both
// empty. It must be called on the foreground.
func (e *Engine) Settle() {
	for {
		e.updates.Sync(nil)
		if e.foreground.Drain() == 0 && e.updates.Pending() == 0 {
			return
		}
	}
}

func (e *Engine) impact() {
	e.foreground.Post(e.haptics.ImpactOccurred)
}

func (e *Engine) showMessage(text string) {
	e.foreground.Post(func() { e.messages.ShowMessage(text) })
}

// AddPoint starts placing a point at the surface under the view center. It
// returns nil without doing anything while a previous point is still loading.
func (e *Engine) AddPoint(name string) *core.PointObject {
	if e.registry.IsLoading() {
		e.log.Debugf("ignoring %s: a point is still loading", name)
		return nil
	}

	obj := core.NewPointObject(name)
	if query, ok := e.scene.RaycastQuery(e.scene.Center(), obj.AllowedAlignment); ok {
		if results := e.session.Raycast(query); len(results) > 0 {
			obj.SetPlacement(query, results[0])
		}
	}

	e.registry.Load(obj, func(loaded *core.PointObject) {
		e.foreground.Post(func() {
			if err := e.placeObject(loaded); err != nil {
				return
			}
			e.connectIfPaired()
		})
	})
	// Pulses whether or not a surface was found.
	e.impact()
	return obj
}

// placeObject commits a loaded point and starts tracking its surface. Without
// a surface under the reticle the point is deselected instead.
func (e *Engine) placeObject(obj *core.PointObject) error {
	query, initial, ok := obj.Placement()
	if e.focus.State() == FocusInitializing || !ok {
		err := fmt.Errorf("place %s: %w", obj.Name(), ErrNoSurface)
		e.log.Warnf("%v", err)
		e.showMessage(MsgCannotPlace)
		if derr := e.Deselect(obj); derr != nil {
			return errors.Join(err, derr)
		}
		return err
	}

	if initial != nil {
		obj.Commit(*initial)
	}
	sub := e.session.TrackedRaycast(query, func(result core.RaycastResult) {
		e.updates.Async(func() {
			e.applyTrackedResult(obj, result)
		})
	})
	obj.SetTrackedRaycast(sub)
	e.interaction.SetSelected(obj)
	obj.SetHidden(false)
	return nil
}

// applyTrackedResult runs on the update queue for every tracked raycast result.
func (e *Engine) applyTrackedResult(obj *core.PointObject, result core.RaycastResult) {
	obj.Guard(func() {
		obj.Commit(result)
		if obj.MarkAttached() {
			e.scene.AddChild(obj)
			obj.RequestAnchorUpdate()
		}
		if obj.TakeAnchorUpdate() {
			e.updates.Async(func() {
				e.addOrUpdateAnchor(obj)
			})
		}
	})
}

// addOrUpdateAnchor replaces the point's anchor with one at its current
// transform. It runs on the update queue.
func (e *Engine) addOrUpdateAnchor(obj *core.PointObject) {
	obj.Guard(func() {
		if old, ok := obj.Anchor(); ok {
			e.session.RemoveAnchor(old)
		}
		anchor := core.NewAnchor(obj.Name(), obj.WorldTransform())
		e.session.AddAnchor(anchor)
		obj.SetAnchor(anchor)
	})
}

// connectIfPaired joins the two most recent committed points once their count
// is even.
func (e *Engine) connectIfPaired() {
	pts := e.registry.CommittedPoints()
	if len(pts) < 2 || len(pts)%2 != 0 {
		return
	}
	prev, last := pts[len(pts)-2], pts[len(pts)-1]
	start, end := prev.WorldPosition(), last.WorldPosition()

	e.hidePreview()
	seg, err := core.NewSegment(start, end, e.cfg.upHint(end), core.LineContinuous)
	if err != nil {
		e.log.Warnf("not connecting %s and %s: %v", prev.Name(), last.Name(), err)
		return
	}
	seg.Radius = e.cfg.LineRadius
	e.scene.AddChild(seg)
	e.registry.AddSegment(seg)

	label := core.NewDistanceLabel(start, end, geom.PlanarDistance(start, end), e.cfg.LabelLift, e.cfg.LabelTextSize)
	e.scene.AddChild(label)
	e.registry.AddLabel(label)

	e.log.Infof("measured %s between %s and %s", label.Text, prev.Name(), last.Name())
}

// RefreshLivePreview stretches the dashed preview from the last committed point
// to the reticle while the committed count is odd, and hides it otherwise.
func (e *Engine) RefreshLivePreview() {
	pts := e.registry.CommittedPoints()
	if len(pts)%2 == 0 {
		e.hidePreview()
		return
	}
	end := e.focus.WorldPosition()
	if e.reticleKnown {
		end = e.reticleTarget
	}
	e.updateLivePreview(pts[len(pts)-1].WorldPosition(), end)
}

func (e *Engine) updateLivePreview(start, end mgl32.Vec3) {
	up := e.cfg.upHint(end)
	if e.preview == nil {
		seg, err := core.NewSegment(start, end, up, core.LineStripes)
		if err != nil {
			e.log.Debugf("no preview: %v", err)
			return
		}
		seg.Radius = e.cfg.LineRadius
		e.preview = seg
	} else if err := e.preview.Reshape(start, end, up); err != nil {
		e.log.Debugf("no preview: %v", err)
		e.hidePreview()
		return
	}

	e.preview.Hidden = false
	if !e.previewAttached {
		e.scene.AddChild(e.preview)
		e.previewAttached = true
	}
}

func (e *Engine) hidePreview() {
	if e.preview == nil {
		return
	}
	e.preview.Hidden = true
	if e.previewAttached {
		e.scene.RemoveFromParent(e.preview)
		e.previewAttached = false
	}
}

// Preview returns the live preview segment while it is shown.
func (e *Engine) Preview() (*core.Segment, bool) {
	if e.preview == nil || !e.previewAttached || e.preview.Hidden {
		return nil, false
	}
	return e.preview, true
}

// Restart clears every point, segment and label and resets tracking. It is
// refused while a point is loading or during the cooldown after a restart.
func (e *Engine) Restart() bool {
	if !e.IsRestartAvailable() || e.registry.IsLoading() {
		return false
	}
	e.restartAvailable.Store(false)
	e.cooldownMu.Lock()
	e.restartAt = e.clock.Now().Add(e.cfg.RestartCooldown)
	e.cooldownMu.Unlock()

	e.hidePreview()
	e.registry.RemoveAllPoints()
	e.registry.RemoveAllSegments()
	e.registry.RemoveAllLabels()

	e.ResetTracking()
	e.log.Infof("restarted, next restart available at %s", e.restartAt.Format(time.TimeOnly))
	return true
}

// expireRestartCooldown re-enables restart once now reaches the deadline.
func (e *Engine) expireRestartCooldown(now time.Time) {
	if e.restartAvailable.Load() {
		return
	}
	e.cooldownMu.Lock()
	due := !now.Before(e.restartAt)
	e.cooldownMu.Unlock()
	if due {
		e.restartAvailable.Store(true)
	}
}

// ResetTracking restarts world tracking from scratch, dropping all anchors.
func (e *Engine) ResetTracking() {
	e.interaction.SetSelected(nil)
	e.session.Run(core.SessionConfig{
		PlaneDetection:       core.DetectHorizontal | core.DetectVertical,
		EnvironmentTexturing: core.TexturingAutomatic,
	}, core.RunOptions{
		ResetTracking:         true,
		RemoveExistingAnchors: true,
	})
	e.showMessage(MsgFindSurface)
}

func (e *Engine) Pause() {
	e.session.Pause()
}

// Deselect removes obj and releases its anchor. Deselecting an object that is
// not registered is a caller bug and is reported as ErrObjectNotRegistered.
func (e *Engine) Deselect(obj *core.PointObject) error {
	index := e.registry.IndexOfPoint(obj)
	if index < 0 {
		err := fmt.Errorf("deselect %s: %w", obj.Name(), ErrObjectNotRegistered)
		e.log.Errorf("%v", err)
		return err
	}
	e.registry.RemovePoint(index)
	e.interaction.SetSelected(nil)
	if anchor, ok := obj.Anchor(); ok {
		e.session.RemoveAnchor(anchor)
	}
	return nil
}

// Reanchor moves obj to the surface hit by query. While obj is being dragged on
// a surface of any orientation only its position jumps; its orientation eases
// toward the surface's.
func (e *Engine) Reanchor(obj *core.PointObject, query core.RaycastQuery) bool {
	results := e.session.Raycast(query)
	if len(results) == 0 {
		return false
	}
	result := results[0]

	return obj.Guard(func() {
		if obj.AllowedAlignment == core.AlignmentAny && e.interaction.TrackedObject() == obj {
			previous := obj.WorldOrientation()
			obj.SetWorldPosition(geom.TranslationOf(result.WorldTransform))
			obj.SetWorldOrientation(geom.Slerp(previous, geom.OrientationOf(result.WorldTransform), e.cfg.DragSmoothing))
			return
		}
		obj.Commit(result)
	})
}

// RequestAnchorUpdate re-anchors obj at its current transform on the update queue.
func (e *Engine) RequestAnchorUpdate(obj *core.PointObject) {
	obj.RequestAnchorUpdate()
	e.updates.Async(func() {
		if obj.TakeAnchorUpdate() {
			e.addOrUpdateAnchor(obj)
		}
	})
}

// DidUpdateAnchor follows a session correction of an anchor.
func (e *Engine) DidUpdateAnchor(anchor core.Anchor) {
	e.updates.Async(func() {
		obj, ok := e.registry.FindByAnchor(anchor)
		if !ok {
			return
		}
		obj.Guard(func() {
			obj.SetWorldPosition(anchor.Position())
			obj.SetAnchor(anchor)
		})
	})
}

// DidAddPlaneAnchor reports a newly detected surface.
func (e *Engine) DidAddPlaneAnchor(alignment core.Alignment) {
	e.log.Debugf("plane detected (alignment %d)", alignment)
	e.showMessage(MsgSurfaceDetected)
}

// SessionDidFail surfaces tracking failures. Errors that are not session
// errors are ignored.
func (e *Engine) SessionDidFail(err error) {
	var sessionErr *core.SessionError
	if !errors.As(err, &sessionErr) {
		return
	}
	message := sessionErr.Message()
	e.foreground.Post(func() {
		e.log.Errorf("%s %s", MsgSessionFailed, message)
		e.messages.ShowError(MsgSessionFailed, message)
	})
}

// SessionWasInterrupted hides placed points until tracking recovers.
func (e *Engine) SessionWasInterrupted() {
	for _, p := range e.registry.Points() {
		p.SetHidden(true)
	}
}

// CameraDidChangeTrackingState shows committed points again once tracking is normal.
func (e *Engine) CameraDidChangeTrackingState(camera core.Camera) {
	e.log.Debugf("tracking state: %s", camera.TrackingState)
	if camera.TrackingState != core.TrackingNormal {
		return
	}
	for _, p := range e.registry.Points() {
		if p.IsCommitted() {
			p.SetHidden(false)
		}
	}
}

// ShouldAttemptRelocalization always lets the session try to recover after an
// interruption.
func (e *Engine) ShouldAttemptRelocalization() bool {
	return true
}

// SessionResetRequested handles the coaching overlay's reset button, which
// behaves like the restart action.
func (e *Engine) SessionResetRequested() bool {
	return e.Restart()
}

func livePreviewSystem(e *Engine) {
	e.RefreshLivePreview()
}

func restartCooldownSystem(e *Engine, t *Time) {
	e.expireRestartCooldown(t.Time)
}

func foregroundSystem(e *Engine) {
	e.foreground.Drain()
}
