package camera

// CameraController owns the gallery's camera motion state. Input writes the target; the
// engine tick eases the current position toward it. The Camera reads Position and Focus
// from the controller each frame to build its view matrix.
//
// The controller starts in the intro state (hidden, Tick does nothing) and becomes active
// after Activate. Current Z never exceeds the ceiling: a step that would cross it clamps
// both target and current to the ceiling and fires the scroll-out handler instead.
type CameraController interface {
	// Position returns the rendered eye position: current plus the aspect-dependent Z offset.
	//
	// Returns:
	//   - x, y, z: world-space eye position
	Position() (x, y, z float32)

	// Focus returns the look-at point, always on the Z axis ahead of the current position.
	//
	// Returns:
	//   - x, y, z: world-space look-at point
	Focus() (x, y, z float32)

	// Target returns the position the camera is easing toward.
	//
	// Returns:
	//   - [3]float32: the motion target
	Target() [3]float32

	// Current returns the eased camera position (without the eye offset).
	//
	// Returns:
	//   - [3]float32: the current position
	Current() [3]float32

	// SetTarget replaces the whole motion target.
	//
	// Parameters:
	//   - x, y, z: the new target
	SetTarget(x, y, z float32)

	// SetTargetXY replaces the X and Y components of the target, leaving Z untouched.
	//
	// Parameters:
	//   - x, y: the new target X and Y
	SetTargetXY(x, y float32)

	// AddTargetZ offsets the target Z, leaving X and Y untouched.
	//
	// Parameters:
	//   - dz: the Z offset to add
	AddTargetZ(dz float32)

	// ScrollBy offsets the target Z and recentres the target on the Z axis.
	//
	// Parameters:
	//   - dz: the Z offset to add
	ScrollBy(dz float32)

	// Tick advances current one easing step toward target and enforces the ceiling.
	// Does nothing while the controller is in the intro state.
	//
	// Returns:
	//   - bool: true if the ceiling was hit on this tick
	Tick() bool

	// SetAspect updates the viewport aspect ratio used for the eye Z offset.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// EyeOffset returns the Z distance between the current position and the rendered eye.
	//
	// Returns:
	//   - float32: the offset in world units
	EyeOffset() float32

	// Activate leaves the intro state. When the host page has not been scrolled at all the
	// reveal waits for the configured delay, otherwise it happens immediately.
	//
	// Parameters:
	//   - scrollFraction: how far the host page is scrolled, in [0, 1]
	Activate(scrollFraction float64)

	// Visible reports whether the controller has left the intro state.
	//
	// Returns:
	//   - bool: true once revealed
	Visible() bool

	// ResetToTop snaps the target back to the top of the gallery and then runs every
	// callback registered with OnReset, in registration order.
	ResetToTop()

	// OnReset registers a callback that runs after ResetToTop has moved the target.
	//
	// Parameters:
	//   - fn: the callback to run
	OnReset(fn func())

	// Ceiling returns the maximum Z the camera may reach.
	//
	// Returns:
	//   - float32: the ceiling
	Ceiling() float32

	// Close stops a pending reveal timer.
	Close()
}
