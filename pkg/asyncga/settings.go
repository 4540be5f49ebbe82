package asyncga

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// settingsValidate reports fields by their YAML names.
var settingsValidate *validator.Validate

func init() {
	settingsValidate = validator.New(validator.WithRequiredStructEnabled())
	settingsValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// PolicySettings names a registered policy and its parameters.
type PolicySettings struct {
	Name   string `yaml:"name" validate:"required"`
	Params Params `yaml:"params,omitempty"`
}

// HistorySettings selects where run history is recorded. An empty Kind
// disables recording; Settings.AttachHistory wires it into a Config.
type HistorySettings struct {
	Kind string `yaml:"kind,omitempty" validate:"omitempty,oneof=memory sqlite leveldb"`
	Path string `yaml:"path,omitempty"`
}

// Settings is the file form of an engine configuration for float64 genes.
// Lists of policies are combined: crossers, mutators and filters are chained,
// maturity checks and terminators must all pass.
type Settings struct {
	ChromosomeLength int    `yaml:"chromosome_length" validate:"gt=0"`
	PopulationLength int    `yaml:"population_length" validate:"gt=0"`
	FitnessMode      string `yaml:"fitness_mode"`
	Seed             int64  `yaml:"seed"`
	OnUnsampled      string `yaml:"on_unsampled,omitempty"`

	Selector    PolicySettings   `yaml:"selector"`
	Crossers    []PolicySettings `yaml:"crossers" validate:"dive"`
	Mutators    []PolicySettings `yaml:"mutators" validate:"dive"`
	Filters     []PolicySettings `yaml:"filters" validate:"dive"`
	Maturity    []PolicySettings `yaml:"maturity" validate:"dive"`
	Terminators []PolicySettings `yaml:"terminators" validate:"dive"`

	History HistorySettings `yaml:"history,omitempty"`
}

// DefaultSettings mirrors the defaults New applies to an empty Config.
func DefaultSettings() Settings {
	return Settings{
		ChromosomeLength: 10,
		PopulationLength: 10,
		FitnessMode:      string(FitnessMoving),
		OnUnsampled:      "fail",
		Selector:         PolicySettings{Name: "tournament"},
		Crossers:         []PolicySettings{{Name: "single_point"}},
		Mutators:         []PolicySettings{{Name: "noise", Params: Params{"deviation": DefaultNoiseDeviation}}},
		Filters:          []PolicySettings{{Name: "elite"}},
		Maturity: []PolicySettings{
			{Name: "age", Params: Params{"min_age": DefaultMinAge, "grow": 1}},
			{Name: "statistics", Params: Params{"threshold": DefaultStatisticThreshold}},
		},
		Terminators: []PolicySettings{{Name: "max_iteration", Params: Params{"max": DefaultMaxIteration}}},
	}
}

// ParseSettings decodes YAML over the defaults and validates the result.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("%w: parse settings: %v", ErrConfiguration, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadSettings reads settings with priority: environment > file > defaults.
// An empty path skips the file.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf("read settings: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("%w: parse settings %s: %v", ErrConfiguration, path, err)
		}
	}
	if err := s.applyEnv(); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) applyEnv() error {
	ints := map[string]*int{
		"ASYNCGA_CHROMOSOME_LENGTH": &s.ChromosomeLength,
		"ASYNCGA_POPULATION_LENGTH": &s.PopulationLength,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrConfiguration, key, err)
		}
		*dst = n
	}
	if v := os.Getenv("ASYNCGA_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: ASYNCGA_SEED: %v", ErrConfiguration, err)
		}
		s.Seed = seed
	}
	if v := os.Getenv("ASYNCGA_FITNESS_MODE"); v != "" {
		s.FitnessMode = v
	}
	if v := os.Getenv("ASYNCGA_HISTORY"); v != "" {
		kind, path, _ := strings.Cut(v, ":")
		s.History = HistorySettings{Kind: kind, Path: path}
	}
	return nil
}

// Validate checks everything that can be checked without building policies.
func (s Settings) Validate() error {
	var errs []error
	if err := settingsValidate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return configError("validate settings: %v", err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, configError("%s fails %s%s", settingsField(fe), fe.Tag(), tagParam(fe)))
		}
	}
	if _, err := ParseFitnessMode(s.FitnessMode); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseUnsampled(s.OnUnsampled); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func settingsField(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func tagParam(fe validator.FieldError) string {
	if fe.Param() == "" {
		return ""
	}
	return "=" + fe.Param()
}

func parseUnsampled(s string) (UnsampledPolicy, error) {
	switch strings.ToLower(s) {
	case "", "fail":
		return UnsampledFail, nil
	case "discard":
		return UnsampledDiscard, nil
	default:
		return 0, configError("unknown on_unsampled %q", s)
	}
}

// Apply copies the settings into cfg and builds every named policy. Set
// cfg.Problem first when the settings use policies that depend on it.
func (s Settings) Apply(cfg *Config[float64]) error {
	if err := s.Validate(); err != nil {
		return err
	}
	mode, _ := ParseFitnessMode(s.FitnessMode)
	unsampled, _ := parseUnsampled(s.OnUnsampled)

	cfg.ChromosomeLength = s.ChromosomeLength
	cfg.PopulationLength = s.PopulationLength
	cfg.FitnessMode = mode
	cfg.Seed = s.Seed
	cfg.OnUnsampled = unsampled

	selector, err := resolveAs[Selector[float64]](KindSelector, s.Selector, cfg)
	if err != nil {
		return err
	}
	cfg.Selector = selector

	crossers, err := resolveAll[Crosser[float64]](KindCrosser, s.Crossers, cfg)
	if err != nil {
		return err
	}
	if len(crossers) > 0 {
		cfg.Crosser = single(crossers, ChainCrossers[float64])
	}

	mutators, err := resolveAll[Mutator[float64]](KindMutator, s.Mutators, cfg)
	if err != nil {
		return err
	}
	if len(mutators) > 0 {
		cfg.Mutator = single(mutators, ChainMutators[float64])
	}

	filters, err := resolveAll[Filter[float64]](KindFilter, s.Filters, cfg)
	if err != nil {
		return err
	}
	if len(filters) > 0 {
		cfg.Filter = single(filters, ChainFilters[float64])
	}

	maturity, err := resolveAll[Maturity](KindMaturity, s.Maturity, cfg)
	if err != nil {
		return err
	}
	if len(maturity) > 0 {
		cfg.Maturity = AllMature(maturity...)
	}

	terminators, err := resolveAll[Terminator](KindTerminator, s.Terminators, cfg)
	if err != nil {
		return err
	}
	if len(terminators) > 0 {
		cfg.Terminator = single(terminators, AllActive)
	}
	return nil
}

// AttachHistory opens the configured history store and installs a
// HistoryObserver on cfg. It returns a nil store when history is disabled;
// otherwise the caller closes the store with CloseHistory after the run.
func (s Settings) AttachHistory(ctx context.Context, cfg *Config[float64]) (History, error) {
	if s.History.Kind == "" {
		return nil, nil
	}
	store, err := OpenHistory(ctx, s.History.Kind, s.History.path())
	if err != nil {
		return nil, err
	}
	obs := NewHistoryObserver[float64](store)
	obs.Logger = cfg.Logger
	cfg.Observer = obs
	return store, nil
}

// path falls back to a file or directory in the working directory.
func (h HistorySettings) path() string {
	if h.Path != "" {
		return h.Path
	}
	switch h.Kind {
	case "sqlite":
		return "asyncga-history.db"
	case "leveldb":
		return "asyncga-history"
	}
	return ""
}

func resolveAs[P any](kind PolicyKind, ps PolicySettings, cfg *Config[float64]) (P, error) {
	var zero P
	policy, err := ResolvePolicy(kind, ps.Name, ps.Params, cfg)
	if err != nil {
		return zero, err
	}
	typed, ok := policy.(P)
	if !ok {
		return zero, configError("%s %s has type %T", kind, ps.Name, policy)
	}
	return typed, nil
}

func resolveAll[P any](kind PolicyKind, list []PolicySettings, cfg *Config[float64]) ([]P, error) {
	out := make([]P, 0, len(list))
	for _, ps := range list {
		p, err := resolveAs[P](kind, ps, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// single returns the only element of policies, or their combination.
func single[P any, C ~[]P](policies []P, combine func(...P) C) P {
	if len(policies) == 1 {
		return policies[0]
	}
	return any(combine(policies...)).(P)
}
