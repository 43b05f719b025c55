package domain

import "math"

// Magnitude returns the Euclidean norm of the three acceleration axes,
// in g. It is defined for every Record: missing axes decode to zero.
func Magnitude(r *Record) float64 {
	return math.Sqrt(r.AccelX*r.AccelX + r.AccelY*r.AccelY + r.AccelZ*r.AccelZ)
}
