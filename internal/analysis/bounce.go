package analysis

import "math"

// Apexes returns the local maxima of a height series, skipping the first
// sample so a body dropped from rest does not count its start as a bounce.
// A flat top counts once.
func Apexes(ys []float64) []float64 {
	var out []float64
	for i := 1; i < len(ys)-1; i++ {
		if ys[i] > ys[i-1] && ys[i] >= ys[i+1] {
			j := i
			for j+1 < len(ys) && ys[j+1] == ys[i] {
				j++
			}
			if j+1 < len(ys) {
				out = append(out, ys[i])
			}
			i = j
		}
	}
	return out
}

// Restitution estimates the coefficient of restitution from successive
// apex heights measured above rest, the height of the body at contact.
// With free flight h grows with v squared, so e is the mean of
// sqrt(h[n+1]/h[n]). ok is false with fewer than two usable apexes.
func Restitution(apexes []float64, rest float64) (e float64, ok bool) {
	var sum float64
	var n int
	for i := 1; i < len(apexes); i++ {
		h0, h1 := apexes[i-1]-rest, apexes[i]-rest
		if h0 <= 0 || h1 < 0 {
			continue
		}
		sum += math.Sqrt(h1 / h0)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
