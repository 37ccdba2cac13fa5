package resolve

import (
	"strings"
	"unicode"
)

// ValueType is the type a raw value is coerced to.
type ValueType int

// Value types.
const (
	TypeString ValueType = iota + 1
	TypeInt
	TypeSigning
)

// String returns the name of the value type.
func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "integer"
	case TypeSigning:
		return "signing"
	default:
		return "unknown"
	}
}

// EnvPrefix prefixes every environment variable leapbuild reads.
const EnvPrefix = "LEAPBUILD_"

// Field describes one build property accepted by the resolver.
type Field struct {
	Key         string // resolver key, e.g. "minPlatformVersion"
	Type        ValueType
	Required    bool
	Description string
}

// Env returns the environment variable that overrides the field,
// e.g. LEAPBUILD_MIN_PLATFORM_VERSION.
func (f Field) Env() string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(splitCamel(f.Key), "-", "_"))
}

// Flag returns the CLI flag name that overrides the field,
// e.g. min-platform-version.
func (f Field) Flag() string {
	return splitCamel(f.Key)
}

// Key names.
const (
	KeyApplicationID          = "applicationId"
	KeyNamespace              = "namespace"
	KeyMinPlatformVersion     = "minPlatformVersion"
	KeyTargetPlatformVersion  = "targetPlatformVersion"
	KeyCompilePlatformVersion = "compilePlatformVersion"
	KeyVersionCode            = "versionCode"
	KeyVersionName            = "versionName"
	KeyToolchainVersion       = "toolchainVersion"
	KeyJavaVersion            = "javaVersion"
	KeySigningProfile         = "signingProfile"
)

var fields = []Field{
	{Key: KeyApplicationID, Type: TypeString, Required: true, Description: "Application identifier (package name)"},
	{Key: KeyNamespace, Type: TypeString, Description: "Code namespace, defaults to the application identifier"},
	{Key: KeyMinPlatformVersion, Type: TypeInt, Required: true, Description: "Minimum platform (SDK) version"},
	{Key: KeyTargetPlatformVersion, Type: TypeInt, Required: true, Description: "Target platform (SDK) version"},
	{Key: KeyCompilePlatformVersion, Type: TypeInt, Required: true, Description: "Compile platform (SDK) version"},
	{Key: KeyVersionCode, Type: TypeInt, Required: true, Description: "Monotonic version code, must be positive"},
	{Key: KeyVersionName, Type: TypeString, Required: true, Description: "User-visible version name"},
	{Key: KeyToolchainVersion, Type: TypeString, Required: true, Description: "NDK / native toolchain version"},
	{Key: KeyJavaVersion, Type: TypeInt, Description: "JVM source, target and bytecode level"},
	{Key: KeySigningProfile, Type: TypeSigning, Required: true, Description: "Signing profile: debug or release"},
}

var (
	byKey  = indexFields(func(f Field) string { return f.Key })
	byEnv  = indexFields(Field.Env)
	byFlag = indexFields(Field.Flag)
)

func indexFields(key func(Field) string) map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[key(f)] = f
	}
	return m
}

// Fields returns the schema in declaration order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Lookup returns the field for a resolver key.
func Lookup(key string) (Field, bool) {
	f, ok := byKey[key]
	return f, ok
}

// LookupEnv returns the field overridden by an environment variable name.
func LookupEnv(name string) (Field, bool) {
	f, ok := byEnv[name]
	return f, ok
}

// LookupFlag returns the field overridden by a CLI flag name.
func LookupFlag(name string) (Field, bool) {
	f, ok := byFlag[name]
	return f, ok
}

// splitCamel converts camelCase to kebab-case: minPlatformVersion -> min-platform-version.
func splitCamel(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
