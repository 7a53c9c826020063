package cpengine

import (
	"github.com/jakecoffman/cp"
	"github.com/san-kum/cpsafe/internal/engine"
)

func MomentForCircle(mass, innerRadius, outerRadius float64, offset engine.Vector) float64 {
	return cp.MomentForCircle(mass, innerRadius, outerRadius, toCP(offset))
}

func MomentForSegment(mass float64, a, b engine.Vector, radius float64) float64 {
	return cp.MomentForSegment(mass, toCP(a), toCP(b), radius)
}

func MomentForBox(mass, width, height float64) float64 {
	return cp.MomentForBox(mass, width, height)
}

func MomentForPoly(mass float64, verts []engine.Vector, offset engine.Vector, radius float64) float64 {
	cv := make([]cp.Vector, len(verts))
	for i, v := range verts {
		cv[i] = toCP(v)
	}
	return cp.MomentForPoly(mass, len(cv), cv, toCP(offset), radius)
}

func AreaForCircle(innerRadius, outerRadius float64) float64 {
	return cp.AreaForCircle(innerRadius, outerRadius)
}
