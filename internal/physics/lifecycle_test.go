package physics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cpsafe/internal/engine/cpengine"
	"github.com/san-kum/cpsafe/internal/engine/enginetest"
	"github.com/san-kum/cpsafe/internal/physics"
	"github.com/san-kum/cpsafe/internal/userdata"
)

var _ = Describe("Record lifecycle", func() {
	var (
		eng   *cpengine.Engine
		rec   *enginetest.Recorder
		opt   physics.Option
		space *physics.Space
	)

	BeforeEach(func() {
		eng = cpengine.New()
		rec = enginetest.New(eng)
		opt = physics.WithEngine(rec)
		space = physics.NewSpace(opt)
		space.SetGravity(physics.Vector{Y: -100})
	})

	AfterEach(func() {
		if !space.Released() {
			space.Release()
		}
		Expect(eng.Stats().Total()).To(BeZero(), "leaked records: %+v", eng.Stats())
	})

	Context("with a populated space", func() {
		var (
			ball   *physics.Body
			circle *physics.Shape
		)

		BeforeEach(func() {
			ball = physics.NewBody(1, physics.MomentForCircle(1, 0, 1, physics.Vector{}), opt)
			circle = physics.NewCircle(ball, 1, physics.Vector{})
			space.AddBody(ball)
			space.AddShape(circle)
		})

		It("destroys every record exactly once when handles go in any order", func() {
			circle.Release()
			space.Release()
			Expect(rec.Count("BodyDestroy", "body#1")).To(BeZero())

			ball.Release()
			Expect(rec.Count("BodyDestroy", "body#1")).To(Equal(1))
			Expect(rec.Count("ShapeDestroy", "shape#1")).To(Equal(1))
			Expect(rec.Count("SpaceDestroy", "space#1")).To(Equal(1))
		})

		It("keeps a removed body usable", func() {
			space.RemoveShape(circle)
			space.RemoveBody(ball)
			Expect(space.BodyCount()).To(BeZero())

			ball.SetVelocity(physics.Vector{X: 1})
			Expect(ball.Velocity()).To(Equal(physics.Vector{X: 1}))

			circle.Release()
			ball.Release()
			Expect(rec.Ops("BodyDestroy")).To(Equal([]string{"BodyDestroy(body#1)"}))
		})

		It("integrates the body while stepping", func() {
			for range 10 {
				space.Step(1.0 / 60.0)
			}
			Expect(ball.Position().Y).To(BeNumerically("<", 0))
			Expect(rec.Ops("SpaceStep")).To(HaveLen(10))

			circle.Release()
			ball.Release()
		})

		It("shares extension data across handles", func() {
			other := ball.Duplicate()
			userdata.Set(ball.Data(), []string{"tag"})

			tags, ok := userdata.Get[[]string](other.Data())
			Expect(ok).To(BeTrue())
			Expect(tags).To(ConsistOf("tag"))

			_, ok = userdata.Get[string](other.Data())
			Expect(ok).To(BeFalse())

			other.Release()
			circle.Release()
			ball.Release()
		})
	})

	It("rejects Release on a released handle", func() {
		b := physics.NewBody(1, 1, opt)
		b.Release()
		Expect(func() { b.Release() }).To(PanicWith(MatchError(physics.ErrReleased)))
	})
})
