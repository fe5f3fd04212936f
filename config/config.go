// Package config loads the YAML configuration recognized by spec.md §6:
// phase counts and rest densities, emitter/grid sizing, time stepping,
// equation-of-state selection, and the preview driver's flags. It follows
// the embedded-defaults-plus-override pattern of the teacher's own
// config package (_examples/pthm-soup/config/config.go): unmarshal the
// embedded defaults first, then unmarshal the user file over it so only
// the keys actually present in the file are overridden.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mixfluid/grid"
	"mixfluid/sim"
	"mixfluid/vec3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// EOSConfig selects between Tait and linear equations of state, per
// spec.md §6's eos_mode key.
type EOSConfig struct {
	Mode string  `yaml:"mode"` // "tait" or "linear"
	K1   float64 `yaml:"k1"`
	K2   float64 `yaml:"k2"`
	K3   float64 `yaml:"k3"`
}

// PhysicsConfig holds the global fields of spec.md §3.
type PhysicsConfig struct {
	Phases  int       `yaml:"phases"`
	Rho0    []float64 `yaml:"rho0"`
	H       float64   `yaml:"h"`
	Dt      float64   `yaml:"dt"`
	Damp    float64   `yaml:"damp"`
	Tao     float64   `yaml:"tao"`
	EOS     EOSConfig `yaml:"eos"`
	Bound   []float64 `yaml:"bound"`
	Gravity []float64 `yaml:"gravity"`

	Miscible bool `yaml:"miscible"`
}

// GridConfig mirrors spec.md §6's cell_size / S_cell / N_nei keys.
type GridConfig struct {
	CellSize float64 `yaml:"cell_size"`
	SCell    int     `yaml:"s_cell"`
	NNei     int     `yaml:"n_nei"`
}

// EmitterConfig holds the geometric layout parameters spec.md §6 names as
// belonging to the external emitter.
type EmitterConfig struct {
	ParticleCount    int     `yaml:"particle_count"`
	ParticleDistance float64 `yaml:"particle_distance"`
	ParticleRadius   float64 `yaml:"particle_radius"`
	WallLayout       string  `yaml:"wall_layout"`
}

// DriverConfig holds the frame/substep cadence and the feature flags of
// spec.md §9's Open Questions.
type DriverConfig struct {
	SubstepsPerFrame int    `yaml:"substeps_per_frame"`
	Frames           int    `yaml:"frames"`
	OutDir           string `yaml:"out_dir"`
	FramePrefix      string `yaml:"frame_prefix"`

	FixDriftSelfPhase        bool `yaml:"fix_drift_self_phase"`
	ReproducePhaseOneVestige bool `yaml:"reproduce_phase_one_vestige"`
	Debug                    bool `yaml:"debug"`
}

// PreviewConfig holds the optional renderer's settings, per spec.md §6.
type PreviewConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Live     bool   `yaml:"live"`
	ShowMode string `yaml:"show_mode"` // "composition" or "pressure"
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
}

// Config is the top-level file shape.
type Config struct {
	Physics  PhysicsConfig  `yaml:"physics"`
	Grid     GridConfig     `yaml:"grid"`
	Emitter  EmitterConfig  `yaml:"emitter"`
	Driver   DriverConfig   `yaml:"driver"`
	Preview  PreviewConfig  `yaml:"preview"`
}

// Load unmarshals the embedded defaults, then the file at path over them
// if path is non-empty, matching the teacher's merge-over-defaults Load.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %q: %w", path, err)
		}
	}
	return cfg, nil
}

func vec3FromSlice(v []float64) vec3.V {
	if len(v) < 3 {
		return vec3.V{}
	}
	return vec3.V{X: v[0], Y: v[1], Z: v[2]}
}

// SimConfig translates the YAML document into the sim package's own
// Config, keeping the wire format (flat slices, string-valued eos mode)
// independent of the physics package's in-memory representation.
func (c *Config) SimConfig() sim.Config {
	eos := sim.Tait
	if c.Physics.EOS.Mode == "linear" {
		eos = sim.Linear
	}
	return sim.Config{
		Phases:                   c.Physics.Phases,
		RhoRest:                  append([]float64(nil), c.Physics.Rho0...),
		H:                        c.Physics.H,
		Dt:                       c.Physics.Dt,
		Damp:                     c.Physics.Damp,
		Tau:                      c.Physics.Tao,
		EOS:                      eos,
		K1:                       c.Physics.EOS.K1,
		K2:                       c.Physics.EOS.K2,
		K3:                       c.Physics.EOS.K3,
		Gravity:                  vec3FromSlice(c.Physics.Gravity),
		Bound:                    vec3FromSlice(c.Physics.Bound),
		Epsilon:                  c.Physics.H * 0.1,
		Miscible:                 c.Physics.Miscible,
		FixDriftSelfPhase:        c.Driver.FixDriftSelfPhase,
		ReproducePhaseOneVestige: c.Driver.ReproducePhaseOneVestige,
	}
}

// GridConfig translates the YAML document into the grid package's Config.
func (c *Config) GridConfig() grid.Config {
	return grid.Config{
		CellSize: c.Grid.CellSize,
		Bound:    vec3FromSlice(c.Physics.Bound),
		SCell:    c.Grid.SCell,
		NNei:     c.Grid.NNei,
	}
}
