/*
Package cursor contains the real-time cursor synchronization logic.

This file provides the rendering-side interpolation helper. A rendered cursor
eases toward its latest known target position instead of snapping, hiding
network jitter. Interpolation is a pure rendering concern and plays no part in
the state's correctness contract.
*/
package cursor

// SmoothingFactor is the fraction of the remaining distance a rendered cursor
// covers per animation frame.
const SmoothingFactor = 0.2

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Interpolator advances a rendered position toward successive target samples.
// The zero value snaps to the first target it is given.
type Interpolator struct {
	x, y    float64
	started bool
}

// Step advances toward the target by one frame's worth of smoothing and
// returns the position to render.
func (i *Interpolator) Step(targetX, targetY float64) (x, y float64) {
	if !i.started {
		i.x, i.y = targetX, targetY
		i.started = true
		return i.x, i.y
	}

	i.x = Lerp(i.x, targetX, SmoothingFactor)
	i.y = Lerp(i.y, targetY, SmoothingFactor)
	return i.x, i.y
}

// Position returns the last rendered position without advancing.
func (i *Interpolator) Position() (x, y float64) {
	return i.x, i.y
}
