package resolve

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapbuild/internal/testutil"
	"github.com/leapstack-labs/leapbuild/pkg/core"
)

func exampleDefaults() Values {
	return Values{
		KeyMinPlatformVersion:     21,
		KeyTargetPlatformVersion:  33,
		KeyCompilePlatformVersion: 34,
		KeyVersionCode:            1,
		KeyVersionName:            "1.0",
		KeyApplicationID:          "com.example.app",
		KeyToolchainVersion:       "27.0",
		KeySigningProfile:         "debug",
	}
}

func exampleDescriptor() core.BuildDescriptor {
	return core.BuildDescriptor{
		ApplicationID:          "com.example.app",
		Namespace:              "com.example.app",
		MinPlatformVersion:     21,
		TargetPlatformVersion:  33,
		CompilePlatformVersion: 34,
		VersionCode:            1,
		VersionName:            "1.0",
		ToolchainVersion:       "27.0",
		SigningProfile:         core.SigningDebug,
	}
}

func TestResolve_OverrideReplacesDefault(t *testing.T) {
	got, err := Resolve(exampleDefaults(), Values{KeyMinPlatformVersion: 23})
	require.NoError(t, err)

	want := exampleDescriptor()
	want.MinPlatformVersion = 23
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_NoOverrides(t *testing.T) {
	got, err := Resolve(exampleDefaults(), nil)
	require.NoError(t, err)
	assert.Equal(t, exampleDescriptor(), got)
}

func TestResolve_MergedValuesCarriedExactly(t *testing.T) {
	overrides := Values{
		KeyApplicationID:          "com.example.progetto",
		KeyMinPlatformVersion:     23,
		KeyTargetPlatformVersion:  34,
		KeyCompilePlatformVersion: 35,
		KeyVersionCode:            42,
		KeyVersionName:            "2.3.1",
		KeyToolchainVersion:       "27.0.12077973",
		KeySigningProfile:         "release",
	}

	got, err := Resolve(exampleDefaults(), overrides)
	require.NoError(t, err)

	want := core.BuildDescriptor{
		ApplicationID:          "com.example.progetto",
		Namespace:              "com.example.progetto",
		MinPlatformVersion:     23,
		TargetPlatformVersion:  34,
		CompilePlatformVersion: 35,
		VersionCode:            42,
		VersionName:            "2.3.1",
		ToolchainVersion:       "27.0.12077973",
		SigningProfile:         core.SigningRelease,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name      string
		defaults  func() Values
		overrides Values
		wantKind  Kind
		wantKey   string
		sentinel  error
	}{
		{
			name:      "override key absent from defaults",
			overrides: Values{"minSdk": 23},
			wantKind:  KindUnknownKey,
			wantKey:   "minSdk",
			sentinel:  ErrUnknownKey,
		},
		{
			name: "schema key not declared by defaults",
			defaults: func() Values {
				return exampleDefaults()
			},
			overrides: Values{KeyJavaVersion: 17},
			wantKind:  KindUnknownKey,
			wantKey:   KeyJavaVersion,
			sentinel:  ErrUnknownKey,
		},
		{
			name: "defaults key outside schema",
			defaults: func() Values {
				d := exampleDefaults()
				d["flavor"] = "free"
				return d
			},
			wantKind: KindUnknownKey,
			wantKey:  "flavor",
			sentinel: ErrUnknownKey,
		},
		{
			name: "required key missing after merge",
			defaults: func() Values {
				d := exampleDefaults()
				delete(d, KeyVersionName)
				return d
			},
			wantKind: KindMissingField,
			wantKey:  KeyVersionName,
			sentinel: ErrMissingField,
		},
		{
			name:      "blank override counts as missing",
			overrides: Values{KeyApplicationID: "   "},
			wantKind:  KindMissingField,
			wantKey:   KeyApplicationID,
			sentinel:  ErrMissingField,
		},
		{
			name:      "nil override counts as missing",
			overrides: Values{KeyToolchainVersion: nil},
			wantKind:  KindMissingField,
			wantKey:   KeyToolchainVersion,
			sentinel:  ErrMissingField,
		},
		{
			name:      "non-integer version code",
			overrides: Values{KeyVersionCode: "abc"},
			wantKind:  KindTypeMismatch,
			wantKey:   KeyVersionCode,
			sentinel:  ErrTypeMismatch,
		},
		{
			name:      "fractional platform version",
			overrides: Values{KeyTargetPlatformVersion: 33.5},
			wantKind:  KindTypeMismatch,
			wantKey:   KeyTargetPlatformVersion,
			sentinel:  ErrTypeMismatch,
		},
		{
			name:      "boolean platform version",
			overrides: Values{KeyCompilePlatformVersion: true},
			wantKind:  KindTypeMismatch,
			wantKey:   KeyCompilePlatformVersion,
			sentinel:  ErrTypeMismatch,
		},
		{
			name:      "unquoted yaml version name",
			overrides: Values{KeyVersionName: 1.0},
			wantKind:  KindTypeMismatch,
			wantKey:   KeyVersionName,
			sentinel:  ErrTypeMismatch,
		},
		{
			name:      "unknown signing profile",
			overrides: Values{KeySigningProfile: "staging"},
			wantKind:  KindTypeMismatch,
			wantKey:   KeySigningProfile,
			sentinel:  ErrTypeMismatch,
		},
		{
			name:      "min exceeds target",
			overrides: Values{KeyMinPlatformVersion: 40},
			wantKind:  KindConstraintViolation,
			wantKey:   KeyMinPlatformVersion,
			sentinel:  ErrConstraintViolation,
		},
		{
			name:      "target exceeds compile",
			overrides: Values{KeyTargetPlatformVersion: 35},
			wantKind:  KindConstraintViolation,
			wantKey:   KeyTargetPlatformVersion,
			sentinel:  ErrConstraintViolation,
		},
		{
			name:      "zero version code",
			overrides: Values{KeyVersionCode: 0},
			wantKind:  KindConstraintViolation,
			wantKey:   KeyVersionCode,
			sentinel:  ErrConstraintViolation,
		},
		{
			name:      "negative min platform",
			overrides: Values{KeyMinPlatformVersion: -1},
			wantKind:  KindConstraintViolation,
			wantKey:   KeyMinPlatformVersion,
			sentinel:  ErrConstraintViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defaults := exampleDefaults()
			if tt.defaults != nil {
				defaults = tt.defaults()
			}

			got, err := Resolve(defaults, tt.overrides)
			require.Error(t, err)
			assert.True(t, got.IsZero(), "no partial descriptor may be returned")
			assert.True(t, errors.Is(err, tt.sentinel), "errors.Is(%v, %v)", err, tt.sentinel)

			ve, ok := AsValidationError(err)
			require.True(t, ok, "expected *ValidationError, got %T", err)
			assert.Equal(t, tt.wantKind, ve.Kind)
			assert.Equal(t, tt.wantKey, ve.Key)
		})
	}
}

func TestResolve_UnknownKeyReportedBeforeOtherErrors(t *testing.T) {
	overrides := Values{
		KeyVersionCode: "abc",
		"zzz":          1,
		"aaa":          2,
	}

	_, err := Resolve(exampleDefaults(), overrides)
	require.Error(t, err)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, KindUnknownKey, ve.Kind)
	assert.Equal(t, "aaa", ve.Key, "unknown keys are reported in sorted order")
}

func TestResolve_Coercion(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"int", 23, 23},
		{"int64", int64(23), 23},
		{"uint16", uint16(23), 23},
		{"integral float", float64(23), 23},
		{"numeric string", "23", 23},
		{"padded string", " 23 ", 23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(exampleDefaults(), Values{KeyMinPlatformVersion: tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.MinPlatformVersion)
		})
	}
}

func TestResolve_SigningProfileCaseInsensitive(t *testing.T) {
	got, err := Resolve(exampleDefaults(), Values{KeySigningProfile: "RELEASE"})
	require.NoError(t, err)
	assert.Equal(t, core.SigningRelease, got.SigningProfile)
}

func TestResolve_Namespace(t *testing.T) {
	defaults := exampleDefaults()
	defaults[KeyNamespace] = ""

	got, err := Resolve(defaults, nil)
	require.NoError(t, err)
	assert.Equal(t, "com.example.app", got.Namespace, "blank namespace derives from applicationId")

	got, err = Resolve(defaults, Values{KeyNamespace: "com.example.shared"})
	require.NoError(t, err)
	assert.Equal(t, "com.example.shared", got.Namespace)
	assert.Equal(t, "com.example.app", got.ApplicationID)
}

func TestResolve_JavaVersion(t *testing.T) {
	defaults := exampleDefaults()
	defaults[KeyJavaVersion] = 11

	got, err := Resolve(defaults, nil)
	require.NoError(t, err)
	assert.Equal(t, 11, got.JavaVersion)

	_, err = Resolve(defaults, Values{KeyJavaVersion: 7})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestResolver_MinPlatformFloor(t *testing.T) {
	r := New(core.Constraints{MinPlatformFloor: 23}, WithLogger(testutil.NewTestLogger(t)))

	_, err := r.Resolve(exampleDefaults(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstraintViolation)
	assert.Contains(t, err.Error(), "floor 23")

	got, err := r.Resolve(exampleDefaults(), Values{KeyMinPlatformVersion: 23})
	require.NoError(t, err)
	assert.Equal(t, 23, got.MinPlatformVersion)
}

func TestResolver_ResolveLayers(t *testing.T) {
	r := New(core.Constraints{})

	file := Layer{Name: SourceFile, Values: Values{KeyMinPlatformVersion: 23, KeyVersionCode: 5}}
	env := Layer{Name: SourceEnv, Values: Values{KeyVersionCode: "7"}}
	flags := Layer{Name: SourceFlags, Values: Values{KeySigningProfile: "release"}}

	res, err := r.Explain(exampleDefaults(), file, env, flags)
	require.NoError(t, err)

	assert.Equal(t, 23, res.Descriptor.MinPlatformVersion)
	assert.Equal(t, 7, res.Descriptor.VersionCode, "later layers win")
	assert.Equal(t, core.SigningRelease, res.Descriptor.SigningProfile)

	assert.Equal(t, SourceFile, res.Sources[KeyMinPlatformVersion])
	assert.Equal(t, SourceEnv, res.Sources[KeyVersionCode])
	assert.Equal(t, SourceFlags, res.Sources[KeySigningProfile])
	assert.Equal(t, SourceDefaults, res.Sources[KeyApplicationID])
}

func TestResolver_ErrorNamesSourceLayer(t *testing.T) {
	r := New(core.Constraints{})

	_, err := r.ResolveLayers(exampleDefaults(),
		Layer{Name: SourceFile, Values: Values{KeyVersionCode: 3}},
		Layer{Name: SourceEnv, Values: Values{KeyVersionCode: "abc"}},
	)
	require.Error(t, err)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, KindTypeMismatch, ve.Kind)
	assert.Equal(t, SourceEnv, ve.Source)
	assert.Equal(t, "abc", ve.Value)
	assert.Contains(t, err.Error(), "(from env)")
}

func TestResolve_DoesNotMutateInputs(t *testing.T) {
	defaults := exampleDefaults()
	overrides := Values{KeyMinPlatformVersion: 23}

	_, err := Resolve(defaults, overrides)
	require.NoError(t, err)

	assert.Equal(t, exampleDefaults(), defaults)
	assert.Equal(t, Values{KeyMinPlatformVersion: 23}, overrides)
}

func TestResolver_Logging(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger()
	r := New(core.Constraints{MinPlatformFloor: 21}, WithLogger(logger))
	assert.Equal(t, core.Constraints{MinPlatformFloor: 21}, r.Constraints())

	_, err := r.Resolve(exampleDefaults(), Values{KeyMinPlatformVersion: 23})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "resolved build descriptor")
	assert.Contains(t, logs.String(), "min_platform=23")

	_, err = r.Resolve(exampleDefaults(), Values{"minSdk": 23})
	require.Error(t, err)
	assert.Contains(t, logs.String(), "resolution rejected")
}

func TestWithLogger_NilKeepsDiscard(t *testing.T) {
	r := New(core.Constraints{}, WithLogger(nil))

	_, err := r.Resolve(exampleDefaults(), nil)
	require.NoError(t, err)
}

func TestResolve_EveryRequiredFieldMissing(t *testing.T) {
	for _, f := range Fields() {
		if !f.Required {
			continue
		}
		t.Run(f.Key, func(t *testing.T) {
			defaults := exampleDefaults()
			delete(defaults, f.Key)

			d, err := Resolve(defaults, nil)
			assert.Equal(t, core.BuildDescriptor{}, d)
			require.ErrorIs(t, err, ErrMissingField)
			ve, ok := AsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, f.Key, ve.Key)

			_, err = Resolve(exampleDefaults(), Values{f.Key: ""})
			ve, ok = AsValidationError(err)
			require.True(t, ok, "blank override of %s", f.Key)
			assert.Equal(t, KindMissingField, ve.Kind)
			assert.Equal(t, f.Key, ve.Key)
		})
	}
}
