package gallery

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-gallery/engine/scene"
	"github.com/Carmen-Shannon/oxy-gallery/engine/visibility"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a gallery session. Zero values are replaced by the defaults
// in applyDefaults, so a config file only needs to name what it changes.
type Config struct {
	// Source is the base directory or http(s) URL the list and images are read from.
	Source string `yaml:"source"`
	// ListFile is the newline-delimited image list, relative to Source.
	ListFile string `yaml:"list_file"`
	// ImagesPrefix is joined between Source and each image name.
	ImagesPrefix string `yaml:"images_prefix"`
	// Mobile selects the tighter mobile layout as the base for unset Layout fields.
	Mobile bool `yaml:"mobile"`

	Layout     scene.Layout      `yaml:"layout"`
	Visibility visibility.Config `yaml:"visibility"`
	Camera     CameraConfig      `yaml:"camera"`
	Input      InputConfig       `yaml:"input"`
	Loading    LoadingConfig     `yaml:"loading"`
	Engine     EngineConfig      `yaml:"engine"`
	Window     WindowConfig      `yaml:"window"`
}

// CameraConfig tunes the camera motion controller and projection.
type CameraConfig struct {
	EaseFactor  float32       `yaml:"ease_factor"`
	Ceiling     float32       `yaml:"ceiling"`
	Lookahead   float32       `yaml:"lookahead"`
	RevealDelay time.Duration `yaml:"reveal_delay"`
	FovDegrees  float32       `yaml:"fov_degrees"`
	Near        float32       `yaml:"near"`
	Far         float32       `yaml:"far"`
}

// InputConfig tunes the input tracker.
type InputConfig struct {
	DragSensitivity   float32       `yaml:"drag_sensitivity"`
	ScrollSensitivity float32       `yaml:"scroll_sensitivity"`
	TouchSensitivity  float32       `yaml:"touch_sensitivity"`
	TapDuration       time.Duration `yaml:"tap_duration"`
	TapDistance       float32       `yaml:"tap_distance"`
	ParkFactor        float32       `yaml:"park_factor"`
	KeyScrollGate     float64       `yaml:"key_scroll_gate"`
}

// LoadingConfig tunes texture loading.
type LoadingConfig struct {
	BatchSize           int           `yaml:"batch_size"`
	Timeout             time.Duration `yaml:"timeout"`
	Grace               time.Duration `yaml:"grace"`
	MaxTextureDimension int           `yaml:"max_texture_dimension"`
	OpacityStep         float32       `yaml:"opacity_step"`
}

// EngineConfig tunes the tick and render loops.
type EngineConfig struct {
	TickRate   float64 `yaml:"tick_rate"`
	FrameLimit float64 `yaml:"frame_limit"`
	Profiling  bool    `yaml:"profiling"`
	MSAA       int     `yaml:"msaa"`
	VSync      *bool   `yaml:"vsync"`
}

// WindowConfig sets the initial window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// DefaultConfig returns a config with every default applied and Source set to the current
// directory.
func DefaultConfig() Config {
	cfg := Config{Source: "."}
	applyDefaults(&cfg)
	return cfg
}

// LoadConfig reads a YAML config file, fills in defaults and validates the result.
// A leading ~ in the path or in a filesystem Source is expanded to the home directory.
//
// Parameters:
//   - path: the config file path
//
// Returns:
//   - Config: the loaded config
//   - error: error if the file cannot be read, parsed or fails validation
func LoadConfig(path string) (Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to expand config path %s: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read gallery config file %s: %w", expanded, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("gallery config %s: %w", expanded, err)
	}
	return cfg, nil
}

// ParseConfig parses YAML config data, fills in defaults and validates the result.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the parsed config
//   - error: error if the YAML is malformed or fails validation
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.expandSource(); err != nil {
		return Config{}, err
	}
	if err := validateConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// expandSource resolves ~ in a filesystem source. URLs are left untouched.
func (c *Config) expandSource() error {
	if strings.Contains(c.Source, "://") {
		return nil
	}
	expanded, err := homedir.Expand(c.Source)
	if err != nil {
		return fmt.Errorf("failed to expand source %s: %w", c.Source, err)
	}
	c.Source = expanded
	return nil
}

// applyDefaults fills every unset field with the gallery's standard tuning.
func applyDefaults(c *Config) {
	if c.ListFile == "" {
		c.ListFile = "list.txt"
	}

	// unset layout and visibility fields fall back one by one, so a partial block keeps its shape
	base := scene.DesktopLayout()
	if c.Mobile {
		base = scene.MobileLayout()
	}
	l := &c.Layout
	setDefault(&l.Spacing, base.Spacing)
	setDefault(&l.AngleStep, base.AngleStep)
	setDefault(&l.MinOffset, base.MinOffset)
	setDefault(&l.MaxOffset, base.MaxOffset)

	vis, def := &c.Visibility, visibility.DefaultConfig()
	setDefault(&vis.StartFade, def.StartFade)
	setDefault(&vis.EndFade, def.EndFade)
	setDefault(&vis.MaxOpacity, def.MaxOpacity)
	setDefault(&vis.MinSpread, def.MinSpread)
	setDefault(&vis.MaxSpread, def.MaxSpread)
	setDefault(&vis.SpreadAmount, def.SpreadAmount)

	cam := &c.Camera
	setDefault(&cam.EaseFactor, 0.04)
	setDefault(&cam.Ceiling, 150)
	setDefault(&cam.Lookahead, 1000)
	setDefault(&cam.RevealDelay, 1500*time.Millisecond)
	setDefault(&cam.FovDegrees, 7)
	setDefault(&cam.Near, 1)
	setDefault(&cam.Far, 2000)

	in := &c.Input
	setDefault(&in.DragSensitivity, 0.00002)
	setDefault(&in.ScrollSensitivity, -0.06)
	setDefault(&in.TouchSensitivity, 2)
	setDefault(&in.TapDuration, 400*time.Millisecond)
	setDefault(&in.TapDistance, 10)
	setDefault(&in.ParkFactor, 0.8)
	setDefault(&in.KeyScrollGate, 0.999)

	ld := &c.Loading
	setDefault(&ld.BatchSize, 20)
	setDefault(&ld.Timeout, 30*time.Second)
	setDefault(&ld.Grace, 200*time.Millisecond)
	setDefault(&ld.MaxTextureDimension, 4096)
	setDefault(&ld.OpacityStep, 0.1)

	setDefault(&c.Engine.TickRate, 60)
	setDefault(&c.Engine.MSAA, 4)
	if c.Engine.VSync == nil {
		vsync := true
		c.Engine.VSync = &vsync
	}

	setDefault(&c.Window.Title, "oxy-gallery")
	setDefault(&c.Window.Width, 1280)
	setDefault(&c.Window.Height, 720)
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

// validateConfig rejects configs that would break an invariant of the flythrough.
func validateConfig(c *Config) error {
	var errs []error
	if c.Source == "" {
		errs = append(errs, errors.New("source is required"))
	}

	l := c.Layout
	if l.Spacing <= 0 {
		errs = append(errs, fmt.Errorf("layout.spacing must be positive, got %g", l.Spacing))
	}
	if l.MinOffset < 0 || l.MaxOffset < l.MinOffset {
		errs = append(errs, fmt.Errorf("layout offsets must satisfy 0 <= min <= max, got %g..%g", l.MinOffset, l.MaxOffset))
	}

	v := c.Visibility
	if !(v.EndFade < v.StartFade && v.StartFade <= v.MaxOpacity && v.MaxOpacity <= v.MinSpread && v.MinSpread <= v.MaxSpread) {
		errs = append(errs, fmt.Errorf("visibility distances must satisfy end_fade < start_fade <= max_opacity <= min_spread <= max_spread, got %g, %g, %g, %g, %g",
			v.EndFade, v.StartFade, v.MaxOpacity, v.MinSpread, v.MaxSpread))
	}

	cam := c.Camera
	if cam.EaseFactor <= 0 || cam.EaseFactor > 1 {
		errs = append(errs, fmt.Errorf("camera.ease_factor must be in (0, 1], got %g", cam.EaseFactor))
	}
	if cam.FovDegrees <= 0 || cam.FovDegrees >= 180 {
		errs = append(errs, fmt.Errorf("camera.fov_degrees must be in (0, 180), got %g", cam.FovDegrees))
	}
	if cam.Near <= 0 || cam.Far <= cam.Near {
		errs = append(errs, fmt.Errorf("camera clip planes must satisfy 0 < near < far, got %g, %g", cam.Near, cam.Far))
	}
	if cam.RevealDelay < 0 {
		errs = append(errs, fmt.Errorf("camera.reveal_delay cannot be negative, got %s", cam.RevealDelay))
	}

	if c.Input.TapDuration < 0 || c.Input.TapDistance < 0 {
		errs = append(errs, errors.New("input tap thresholds cannot be negative"))
	}

	if c.Loading.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("loading.batch_size must be at least 1, got %d", c.Loading.BatchSize))
	}
	if c.Loading.Timeout < 0 || c.Loading.Grace < 0 {
		errs = append(errs, errors.New("loading durations cannot be negative"))
	}
	if c.Loading.OpacityStep < 0 || c.Loading.OpacityStep > 1 {
		errs = append(errs, fmt.Errorf("loading.opacity_step must be in (0, 1], got %g", c.Loading.OpacityStep))
	}

	if c.Engine.TickRate < 0 || c.Engine.FrameLimit < 0 {
		errs = append(errs, errors.New("engine rates cannot be negative"))
	}
	if c.Engine.MSAA != 1 && c.Engine.MSAA != 4 {
		errs = append(errs, fmt.Errorf("engine.msaa must be 1 or 4, got %d", c.Engine.MSAA))
	}

	if c.Window.Width < 0 || c.Window.Height < 0 {
		errs = append(errs, errors.New("window size cannot be negative"))
	}
	return errors.Join(errs...)
}
