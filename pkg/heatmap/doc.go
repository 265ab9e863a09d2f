// Package heatmap paints an accumulating attention heatmap into an in-memory RGBA
// buffer addressed by UV coordinates.
//
// Each gaze sample spreads intensity outward from its UV centre in four quadrant
// sweeps. A pixel's alpha holds its accumulated intensity in [0,1] and its RGB is the
// colour ramp entry for that intensity. Sweeps along a ray stop at the buffer edge or
// once the logistic falloff drops below the configured minimum delta.
//
// UV (0,0) is the bottom-left texel, matching texture coordinates; Snapshot flips rows
// so exported images read top-down.
package heatmap
