package resolve

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/leapstack-labs/leapbuild/pkg/core"
)

// Values maps resolver keys to raw, uncoerced values.
type Values map[string]any

// Layer is a named set of override values. The name is reported as the
// source of any value the layer supplies.
type Layer struct {
	Name   string
	Values Values
}

// Well-known layer names.
const (
	SourceDefaults  = "defaults"
	SourceFile      = "file"
	SourceEnv       = "env"
	SourceFlags     = "flags"
	SourceOverrides = "overrides"
)

// MinJavaVersion is the oldest JVM level a descriptor may declare.
const MinJavaVersion = 8

// Resolution is a descriptor together with the layer each value came from.
type Resolution struct {
	Descriptor core.BuildDescriptor
	Sources    map[string]string
}

// Resolver resolves build descriptors under a fixed set of constraints.
// A Resolver holds no mutable state and may be shared.
type Resolver struct {
	constraints core.Constraints
	logger      *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Resolver enforcing c in addition to the built-in rules.
func New(c core.Constraints, opts ...Option) *Resolver {
	r := &Resolver{
		constraints: c,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve merges overrides over defaults and validates the result without any
// injected constraints.
func Resolve(defaults, overrides Values) (core.BuildDescriptor, error) {
	return New(core.Constraints{}).Resolve(defaults, overrides)
}

// Constraints returns the constraints the resolver enforces.
func (r *Resolver) Constraints() core.Constraints {
	return r.constraints
}

// Resolve merges overrides over defaults and validates the result.
func (r *Resolver) Resolve(defaults, overrides Values) (core.BuildDescriptor, error) {
	return r.ResolveLayers(defaults, Layer{Name: SourceOverrides, Values: overrides})
}

// ResolveLayers merges layers over defaults in order, later layers winning,
// and validates the result.
func (r *Resolver) ResolveLayers(defaults Values, layers ...Layer) (core.BuildDescriptor, error) {
	res, err := r.Explain(defaults, layers...)
	if err != nil {
		return core.BuildDescriptor{}, err
	}
	return res.Descriptor, nil
}

// Explain behaves like ResolveLayers and additionally reports which layer
// supplied each value.
func (r *Resolver) Explain(defaults Values, layers ...Layer) (Resolution, error) {
	if err := checkKeys(defaults, layers); err != nil {
		r.logger.Debug("resolution rejected", "error", err)
		return Resolution{}, err
	}

	merged := make(Values, len(defaults))
	sources := make(map[string]string, len(defaults))
	for k, v := range defaults {
		merged[k] = v
		sources[k] = SourceDefaults
	}
	for _, layer := range layers {
		for k, v := range layer.Values {
			merged[k] = v
			sources[k] = layer.Name
		}
	}

	d, err := r.build(merged, sources)
	if err != nil {
		r.logger.Debug("resolution rejected", "error", err)
		return Resolution{}, err
	}

	r.logger.Debug("resolved build descriptor",
		"application_id", d.ApplicationID,
		"min_platform", d.MinPlatformVersion,
		"target_platform", d.TargetPlatformVersion,
		"compile_platform", d.CompilePlatformVersion,
		"signing", d.SigningProfile.String(),
	)

	return Resolution{Descriptor: d, Sources: sources}, nil
}

// checkKeys rejects defaults outside the schema and override keys the
// defaults do not declare. Keys are visited in sorted order so the reported
// error does not depend on map iteration.
func checkKeys(defaults Values, layers []Layer) error {
	for _, k := range slices.Sorted(maps.Keys(defaults)) {
		if _, ok := Lookup(k); !ok {
			return unknownKey(k, SourceDefaults, "not a known build property")
		}
	}
	for _, layer := range layers {
		for _, k := range slices.Sorted(maps.Keys(layer.Values)) {
			if _, ok := defaults[k]; ok {
				continue
			}
			reason := "not a known build property"
			if _, known := Lookup(k); known {
				reason = "not declared by defaults"
			}
			return unknownKey(k, layer.Name, reason)
		}
	}
	return nil
}

func (r *Resolver) build(merged Values, sources map[string]string) (core.BuildDescriptor, error) {
	for _, f := range fields {
		if !f.Required {
			continue
		}
		if raw, ok := merged[f.Key]; !ok || isBlank(raw) {
			err := missingField(f.Key)
			err.Source = sources[f.Key]
			return core.BuildDescriptor{}, err
		}
	}

	var d core.BuildDescriptor
	for _, f := range fields {
		raw, ok := merged[f.Key]
		if !ok || isBlank(raw) {
			continue
		}
		if err := assign(&d, f, raw); err != nil {
			return core.BuildDescriptor{}, typeMismatch(f.Key, raw, sources[f.Key], err.Error())
		}
	}

	if d.Namespace == "" {
		d.Namespace = d.ApplicationID
	}

	if err := r.checkConstraints(d, merged, sources); err != nil {
		return core.BuildDescriptor{}, err
	}
	return d, nil
}

func assign(d *core.BuildDescriptor, f Field, raw any) error {
	switch f.Type {
	case TypeString:
		s, err := coerceString(raw)
		if err != nil {
			return err
		}
		switch f.Key {
		case KeyApplicationID:
			d.ApplicationID = s
		case KeyNamespace:
			d.Namespace = s
		case KeyVersionName:
			d.VersionName = s
		case KeyToolchainVersion:
			d.ToolchainVersion = s
		}
	case TypeInt:
		n, err := CoerceInt(raw)
		if err != nil {
			return err
		}
		switch f.Key {
		case KeyMinPlatformVersion:
			d.MinPlatformVersion = n
		case KeyTargetPlatformVersion:
			d.TargetPlatformVersion = n
		case KeyCompilePlatformVersion:
			d.CompilePlatformVersion = n
		case KeyVersionCode:
			d.VersionCode = n
		case KeyJavaVersion:
			d.JavaVersion = n
		}
	case TypeSigning:
		p, err := coerceSigning(raw)
		if err != nil {
			return err
		}
		d.SigningProfile = p
	default:
		return fmt.Errorf("unsupported field type %s", f.Type)
	}
	return nil
}

func (r *Resolver) checkConstraints(d core.BuildDescriptor, merged Values, sources map[string]string) error {
	violation := func(key, reason string) error {
		return constraintViolation(key, merged[key], sources[key], reason)
	}

	if d.MinPlatformVersion < 1 {
		return violation(KeyMinPlatformVersion,
			fmt.Sprintf("minPlatformVersion must be at least 1, got %d", d.MinPlatformVersion))
	}
	if d.MinPlatformVersion > d.TargetPlatformVersion {
		return violation(KeyMinPlatformVersion,
			fmt.Sprintf("minPlatformVersion (%d) must not exceed targetPlatformVersion (%d)",
				d.MinPlatformVersion, d.TargetPlatformVersion))
	}
	if d.TargetPlatformVersion > d.CompilePlatformVersion {
		return violation(KeyTargetPlatformVersion,
			fmt.Sprintf("targetPlatformVersion (%d) must not exceed compilePlatformVersion (%d)",
				d.TargetPlatformVersion, d.CompilePlatformVersion))
	}
	if d.VersionCode <= 0 {
		return violation(KeyVersionCode,
			fmt.Sprintf("versionCode must be positive, got %d", d.VersionCode))
	}
	if floor := r.constraints.MinPlatformFloor; floor > 0 && d.MinPlatformVersion < floor {
		return violation(KeyMinPlatformVersion,
			fmt.Sprintf("minPlatformVersion (%d) is below the required floor %d", d.MinPlatformVersion, floor))
	}
	if d.JavaVersion != 0 && d.JavaVersion < MinJavaVersion {
		return violation(KeyJavaVersion,
			fmt.Sprintf("javaVersion must be at least %d, got %d", MinJavaVersion, d.JavaVersion))
	}
	return nil
}
