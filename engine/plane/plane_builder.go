package plane

// PlaneBuilderOption is a functional option for configuring a Plane during construction.
type PlaneBuilderOption func(*plane)

// WithOriginalOffset sets the plane's placement position. The spread direction is derived
// from its XY components once all options are applied.
//
// Parameters:
//   - x, y, z: world-space placement
//
// Returns:
//   - PlaneBuilderOption: functional option to set the placement
func WithOriginalOffset(x, y, z float32) PlaneBuilderOption {
	return func(p *plane) {
		p.originalOffset = [3]float32{x, y, z}
	}
}

// WithOpacityStep sets how much the opacity ceiling grows per tick once the texture is loaded.
//
// Parameters:
//   - step: growth per tick, non-positive values keep the default of 0.1
//
// Returns:
//   - PlaneBuilderOption: functional option to set the step
func WithOpacityStep(step float32) PlaneBuilderOption {
	return func(p *plane) {
		if step > 0 {
			p.opacityStep = step
		}
	}
}
