package cloth_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/drape/internal/cloth"
)

func sheet(cols, rows int, spacing, top float64) cloth.Mesh {
	var m cloth.Mesh
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := (float64(c) - float64(cols-1)/2) * spacing
			m.Vertices = append(m.Vertices, cloth.Vec3{x, top - float64(r)*spacing, 0})
		}
	}
	for r := 0; r < rows-1; r++ {
		for c := 0; c < cols-1; c++ {
			i := r*cols + c
			m.Triangles = append(m.Triangles, [3]int{i, i + 1, i + cols + 1}, [3]int{i, i + cols + 1, i + cols})
		}
	}
	return m
}

func tpose() []cloth.Vec3 {
	b := make([]cloth.Vec3, cloth.NumLandmarks)
	set := map[cloth.Landmark]cloth.Vec3{
		cloth.Nose:          {0, 1.65, 0},
		cloth.LeftShoulder:  {0.18, 1.45, -0.05},
		cloth.RightShoulder: {-0.18, 1.45, -0.05},
		cloth.LeftElbow:     {0.45, 1.45, -0.05},
		cloth.RightElbow:    {-0.45, 1.45, -0.05},
		cloth.LeftWrist:     {0.7, 1.45, -0.05},
		cloth.RightWrist:    {-0.7, 1.45, -0.05},
		cloth.LeftHip:       {0.12, 0.95, -0.05},
		cloth.RightHip:      {-0.12, 0.95, -0.05},
		cloth.LeftKnee:      {0.12, 0.5, -0.05},
		cloth.RightKnee:     {-0.12, 0.5, -0.05},
		cloth.LeftAnkle:     {0.12, 0.08, -0.05},
		cloth.RightAnkle:    {-0.12, 0.08, -0.05},
	}
	for i := range b {
		b[i] = cloth.Vec3{math.NaN(), math.NaN(), math.NaN()}
	}
	for l, p := range set {
		b[l] = p
	}
	return b
}

var _ = Describe("Engine", func() {
	var eng *cloth.Engine

	BeforeEach(func() {
		eng = cloth.New()
	})

	Context("before Initialize", func() {
		It("reports the uninitialized state", func() {
			Expect(eng.State()).To(Equal(cloth.Uninitialized))
			Expect(eng.IsInitialized()).To(BeFalse())
		})

		It("rejects stepping and garment operations", func() {
			_, err := eng.Step(1.0 / 60)
			Expect(err).To(MatchError(cloth.ErrNotInitialized))
			_, err = eng.AddGarment(sheet(2, 2, 0.1, 0))
			Expect(err).To(MatchError(cloth.ErrNotInitialized))
		})

		It("accepts collision body updates", func() {
			eng.UpdateCollisionBody(tpose())
			Expect(eng.Body()).To(HaveLen(cloth.NumLandmarks))
		})
	})

	Context("when initialized", func() {
		BeforeEach(func() {
			Expect(eng.Initialize(cloth.DefaultConfig())).To(Succeed())
			eng.UpdateCollisionBody(tpose())
		})

		It("issues distinct handles", func() {
			a, err := eng.AddGarment(sheet(3, 3, 0.1, 1.45))
			Expect(err).NotTo(HaveOccurred())
			b, err := eng.AddGarment(sheet(3, 3, 0.1, 1.45))
			Expect(err).NotTo(HaveOccurred())
			Expect(a).NotTo(Equal(b))
			Expect(eng.Garments()).To(Equal([]cloth.Handle{a, b}))
		})

		It("rejects an empty mesh", func() {
			_, err := eng.AddGarment(cloth.Mesh{})
			Expect(err).To(MatchError(cloth.ErrInvalidInput))
		})

		It("reports unknown handles as not found", func() {
			_, err := eng.Positions(999)
			Expect(err).To(MatchError(cloth.ErrNotFound))
			Expect(err).To(MatchError(cloth.ErrInvalidInput))
		})

		It("returns to an empty initialized engine on reset", func() {
			eng.AddGarment(sheet(4, 4, 0.1, 1.45))
			eng.AddGarment(sheet(3, 5, 0.1, 1.45))
			eng.Reset()
			Expect(eng.ParticleCount()).To(BeZero())
			Expect(eng.Garments()).To(BeEmpty())
			Expect(eng.State()).To(Equal(cloth.Initialized))
		})

		Describe("draping a shirt-sized sheet over the body", func() {
			var (
				h     cloth.Handle
				stats cloth.StepStats
			)

			BeforeEach(func() {
				var err error
				h, err = eng.AddGarment(sheet(13, 17, 0.03, 1.46))
				Expect(err).NotTo(HaveOccurred())
				for i := 0; i < 180; i++ {
					stats, err = eng.Step(1.0 / 60)
					Expect(err).NotTo(HaveOccurred())
				}
			})

			It("keeps anchored particles on their landmarks", func() {
				ps, err := eng.Particles(h)
				Expect(err).NotTo(HaveOccurred())
				body := eng.Body()
				anchored := 0
				for _, p := range ps {
					if p.Anchored() {
						anchored++
						Expect(p.Position).To(Equal(body[p.Anchor]))
					}
				}
				Expect(anchored).To(BeNumerically(">", 0))
			})

			It("stays finite and bounded", func() {
				Expect(stats.Recovered).To(BeZero())
				pos, _ := eng.Positions(h)
				for _, p := range pos {
					for _, c := range p {
						Expect(math.IsNaN(c) || math.IsInf(c, 0)).To(BeFalse())
					}
					Expect(p.Len()).To(BeNumerically("<", 10))
				}
			})

			It("keeps free particles outside every body sphere", func() {
				cfg := eng.Config()
				body := eng.Body()
				ps, _ := eng.Particles(h)
				for _, s := range cfg.Spheres {
					c, ok := s.Center(body)
					if !ok {
						continue
					}
					for _, p := range ps {
						if !p.Free() {
							continue
						}
						Expect(p.Position.Sub(c).Len()).To(BeNumerically(">=", s.Radius-cloth.Epsilon))
					}
				}
			})

			It("hangs below the collar", func() {
				pos, _ := eng.Positions(h)
				Expect(pos[len(pos)-1].Y()).To(BeNumerically("<", 1.46))
			})
		})
	})
})
