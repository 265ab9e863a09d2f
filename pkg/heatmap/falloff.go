package heatmap

import "math"

// falloffSteepness is the logistic slope B.
const falloffSteepness = 2.0

// Falloff is the logistic weight of a sample at a normalized distance d >= 0:
// 1/(1+exp(B*d)). It is 0.5 at the centre and decreases strictly with distance.
func Falloff(d float64) float64 {
	return 1 / (1 + math.Exp(falloffSteepness*d))
}

// Delta is the intensity a sample adds at a pixel distance from its centre.
func (c Config) Delta(distance float64) float64 {
	return Falloff(distance/c.BrushSpread) / c.Amplitude
}

// Reach returns the pixel distance at which Delta drops below MinDelta, or +Inf when
// every distance is painted.
func (c Config) Reach() float64 {
	interest := c.MinDelta * c.Amplitude
	if interest <= 0 {
		return math.Inf(1)
	}
	if interest > 0.5 {
		return 0
	}
	return c.BrushSpread * math.Log(1/interest-1) / falloffSteepness
}
