package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/drape/internal/cloth"
	"github.com/san-kum/drape/internal/mesh"
	"github.com/san-kum/drape/internal/pose"
)

// Garment is a catalogue entry put on at the start of a scenario.
type Garment struct {
	ID   string
	Mesh cloth.Mesh
}

// Scenario is a named, reproducible cloth setup.
type Scenario struct {
	Name        string
	Description string
	Duration    float64
	Motion      pose.Motion
	Fit         bool // fit garments to the body before adding

	physics  func(*cloth.Config)
	garments func() ([]Garment, error)
}

type Registry struct {
	scenarios map[string]Scenario
}

func NewRegistry() *Registry {
	r := &Registry{scenarios: make(map[string]Scenario)}

	r.Register(Scenario{
		Name:        "drape",
		Description: "t-shirt settling on a standing body",
		Duration:    3,
		Fit:         true,
		garments: func() ([]Garment, error) {
			return []Garment{{ID: "tshirt", Mesh: mesh.TShirt()}}, nil
		},
	})

	r.Register(Scenario{
		Name:        "sway",
		Description: "t-shirt on a body swaying side to side",
		Duration:    4,
		Motion:      pose.Sway,
		Fit:         true,
		garments: func() ([]Garment, error) {
			return []Garment{{ID: "tshirt", Mesh: mesh.TShirt()}}, nil
		},
	})

	r.Register(Scenario{
		Name:        "pinned_triangle",
		Description: "single triangle hanging from the left wrist",
		Duration:    2,
		physics: func(c *cloth.Config) {
			c.Spheres = nil
			c.AutoAnchor = false
		},
		garments: func() ([]Garment, error) {
			wrist := pose.TPose(pose.DefaultHeight)[cloth.LeftWrist]
			m := cloth.Mesh{
				Vertices:  []cloth.Vec3{{0, 0, 0}, {0.3, 0, 0}, {0, -0.3, 0}},
				Triangles: [][3]int{{0, 1, 2}},
				Anchors:   map[int]cloth.Landmark{0: cloth.LeftWrist},
			}
			return []Garment{{ID: "triangle", Mesh: mesh.Translate(m, wrist)}}, nil
		},
	})

	r.Register(Scenario{
		Name:        "freefall",
		Description: "unanchored sheet falling onto the floor",
		Duration:    2,
		physics: func(c *cloth.Config) {
			c.Spheres = nil
			c.AutoAnchor = false
			c.Floor = true
			c.FloorHeight = 0
		},
		garments: func() ([]Garment, error) {
			g, err := mesh.Grid(8, 8, 0.5, 0.5)
			if err != nil {
				return nil, err
			}
			return []Garment{{ID: "sheet", Mesh: horizontal(g, 1.5)}}, nil
		},
	})

	r.Register(Scenario{
		Name:        "sphere_drop",
		Description: "unanchored sheet dropped over the head and shoulders",
		Duration:    2,
		physics: func(c *cloth.Config) {
			c.AutoAnchor = false
		},
		garments: func() ([]Garment, error) {
			g, err := mesh.Grid(12, 12, 0.6, 0.6)
			if err != nil {
				return nil, err
			}
			sheet := horizontal(g, 1.9)
			return []Garment{{ID: "sheet", Mesh: mesh.Translate(sheet, cloth.Vec3{0, 0, -0.3})}}, nil
		},
	})

	r.Register(Scenario{
		Name:        "two_garments",
		Description: "t-shirt over a skirt on a walking body",
		Duration:    3,
		Motion:      pose.Walk,
		Fit:         true,
		garments: func() ([]Garment, error) {
			skirt, err := mesh.Skirt(24, 10, 0.16, 0.3, 0.5)
			if err != nil {
				return nil, err
			}
			return []Garment{
				{ID: "skirt", Mesh: skirt},
				{ID: "tshirt", Mesh: mesh.TShirt()},
			}, nil
		},
	})

	return r
}

// horizontal lays a grid from the xy plane flat at height y, rows along +z.
func horizontal(m cloth.Mesh, y float64) cloth.Mesh {
	out := mesh.Clone(m)
	for i, v := range out.Vertices {
		out.Vertices[i] = cloth.Vec3{v.X(), y, -v.Y()}
	}
	return out
}

// Register adds or replaces a scenario.
func (r *Registry) Register(s Scenario) {
	r.scenarios[s.Name] = s
}

func (r *Registry) Get(name string) (Scenario, error) {
	s, ok := r.scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("unknown scenario: %s", name)
	}
	return s, nil
}

func (r *Registry) ListScenarios() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Garments builds the scenario's garment list.
func (s Scenario) Garments() ([]Garment, error) {
	if s.garments == nil {
		return nil, nil
	}
	return s.garments()
}

// DefaultConfig returns the experiment configuration a scenario runs with
// when nothing is overridden.
func (r *Registry) DefaultConfig(name string) (Config, error) {
	s, err := r.Get(name)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Scenario: name,
		Duration: s.Duration,
		Seed:     1,
		Physics:  cloth.DefaultConfig(),
		Session:  defaultSession(),
		Body: Body{
			Motion:    s.Motion,
			Amplitude: 0.05,
			Frequency: 0.5,
			Height:    pose.DefaultHeight,
		},
	}
	if s.physics != nil {
		s.physics(&cfg.Physics)
	}
	return cfg, nil
}

// WithGarments returns a scenario that loads the given garments.
func WithGarments(name, description string, fit bool, garments ...Garment) Scenario {
	return Scenario{
		Name:        name,
		Description: description,
		Duration:    2,
		Fit:         fit,
		garments:    func() ([]Garment, error) { return garments, nil },
	}
}
