package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"slices"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/leapstack-labs/leapbuild/pkg/core"
	"github.com/leapstack-labs/leapbuild/pkg/resolve"
)

// ConfigFileName is the name of the project file.
const ConfigFileName = "leapbuild.yaml"

// ConfigFileNameAlt is the alternate name of the project file.
const ConfigFileNameAlt = "leapbuild.yml"

// FileNames lists accepted project file names in lookup order.
func FileNames() []string {
	return []string{ConfigFileName, ConfigFileNameAlt}
}

var (
	knownSections = []string{SectionAndroid, SectionPolicy}
	policyKeys    = []string{"minPlatformFloor"}
)

// LoadFromDir loads the project file from the given directory.
// It looks for leapbuild.yaml or leapbuild.yml in the directory.
// Returns nil, nil if no project file is found (not an error condition).
func LoadFromDir(dir string) (*Project, error) {
	configPath := FindConfigFile(dir)
	if configPath == "" {
		return nil, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads and checks a project file.
//
// Keys under "android" are returned flattened with "." so nested maps surface
// as unknown build keys during resolution. The "policy" section is decoded
// strictly. Any other top-level key is rejected with an UnknownKey error.
func LoadFile(path string) (*Project, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = filepath.Clean(path)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(absPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	source := resolve.SourceFile + " " + filepath.Base(absPath)

	for _, key := range slices.Sorted(maps.Keys(k.Raw())) {
		if !slices.Contains(knownSections, key) {
			return nil, &resolve.ValidationError{
				Kind:   resolve.KindUnknownKey,
				Key:    key,
				Source: source,
				Reason: fmt.Sprintf("unknown section (expected one of: %v)", knownSections),
			}
		}
	}

	proj := &Project{
		Path: absPath,
		Root: filepath.Dir(absPath),
		Config: core.ProjectConfig{
			Android: map[string]any{},
		},
	}

	if raw := k.Get(SectionAndroid); raw != nil {
		if _, ok := raw.(map[string]any); !ok {
			return nil, &resolve.ValidationError{
				Kind:   resolve.KindTypeMismatch,
				Key:    SectionAndroid,
				Value:  raw,
				Source: source,
				Reason: fmt.Sprintf("section must be a mapping, got %T", raw),
			}
		}
		proj.Config.Android = k.Cut(SectionAndroid).All()
	}

	if raw := k.Get(SectionPolicy); raw != nil {
		if m, ok := raw.(map[string]any); ok {
			for _, key := range slices.Sorted(maps.Keys(m)) {
				if !slices.Contains(policyKeys, key) {
					return nil, &resolve.ValidationError{
						Kind:   resolve.KindUnknownKey,
						Key:    SectionPolicy + "." + key,
						Source: source,
						Reason: fmt.Sprintf("unknown policy (expected one of: %v)", policyKeys),
					}
				}
			}
		}
		policy, err := decodePolicy(raw)
		if err != nil {
			return nil, &resolve.ValidationError{
				Kind:   resolve.KindTypeMismatch,
				Key:    SectionPolicy,
				Value:  raw,
				Source: source,
				Reason: err.Error(),
			}
		}
		proj.Config.Policy = policy
	}

	return proj, nil
}

// decodePolicy decodes the policy section, refusing keys Constraints does not
// declare. Integers follow the same rules as integer build properties.
func decodePolicy(raw any) (core.Constraints, error) {
	var c core.Constraints
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &c,
		TagName:     "koanf",
		ErrorUnused: true,
		DecodeHook:  mapstructure.DecodeHookFuncType(intHook),
	})
	if err != nil {
		return core.Constraints{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return core.Constraints{}, err
	}
	if c.MinPlatformFloor < 0 {
		return core.Constraints{}, fmt.Errorf("minPlatformFloor must not be negative, got %d", c.MinPlatformFloor)
	}
	return c, nil
}

func intHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Int {
		return data, nil
	}
	return resolve.CoerceInt(data)
}

// FindConfigFile finds the project file in the given directory.
// Returns empty string if not found.
func FindConfigFile(dir string) string {
	for _, name := range FileNames() {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// FindProjectRoot walks up from startDir, checking at most maxLevels
// directories, to find one containing leapbuild.yaml or leapbuild.yml.
// Returns empty string if not found.
func FindProjectRoot(startDir string, maxLevels int) string {
	dir := startDir
	for range maxLevels {
		if FindConfigFile(dir) != "" {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
