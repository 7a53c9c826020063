package metrics

import (
	"math"

	"github.com/san-kum/cpsafe/internal/sim"
)

type MinHeight struct {
	name string
	body int
	min  float64
}

func NewMinHeight(body int) *MinHeight {
	return &MinHeight{name: "min_height", body: body, min: math.Inf(1)}
}

func (h *MinHeight) Name() string { return h.name }

func (h *MinHeight) Observe(x sim.State, t float64) {
	if (h.body+1)*sim.StateWidth > len(x) {
		return
	}
	h.min = math.Min(h.min, x.Y(h.body))
}

// Value is +Inf before any sample.
func (h *MinHeight) Value() float64 { return h.min }

func (h *MinHeight) Reset() { h.min = math.Inf(1) }
