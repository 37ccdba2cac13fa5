package core

// BuildDescriptor is the resolved, validated set of build parameters for one
// build invocation.
//
// It is a value type without reference-typed fields. Resolvers hand it out by
// value, so every holder owns an independent copy and nothing can change a
// descriptor after it has been produced.
type BuildDescriptor struct {
	ApplicationID          string         `json:"applicationId" yaml:"applicationId"`
	Namespace              string         `json:"namespace" yaml:"namespace"`
	MinPlatformVersion     int            `json:"minPlatformVersion" yaml:"minPlatformVersion"`
	TargetPlatformVersion  int            `json:"targetPlatformVersion" yaml:"targetPlatformVersion"`
	CompilePlatformVersion int            `json:"compilePlatformVersion" yaml:"compilePlatformVersion"`
	VersionCode            int            `json:"versionCode" yaml:"versionCode"`
	VersionName            string         `json:"versionName" yaml:"versionName"`
	ToolchainVersion       string         `json:"toolchainVersion" yaml:"toolchainVersion"`
	JavaVersion            int            `json:"javaVersion" yaml:"javaVersion"`
	SigningProfile         SigningProfile `json:"signingProfile" yaml:"signingProfile"`
}

// IsZero reports whether d is the zero descriptor returned alongside errors.
func (d BuildDescriptor) IsZero() bool {
	return d == BuildDescriptor{}
}

// Fields returns the descriptor as an ordered list of key/value pairs using
// the same key names the resolver accepts.
func (d BuildDescriptor) Fields() []KeyValue {
	return []KeyValue{
		{Key: "applicationId", Value: d.ApplicationID},
		{Key: "namespace", Value: d.Namespace},
		{Key: "minPlatformVersion", Value: d.MinPlatformVersion},
		{Key: "targetPlatformVersion", Value: d.TargetPlatformVersion},
		{Key: "compilePlatformVersion", Value: d.CompilePlatformVersion},
		{Key: "versionCode", Value: d.VersionCode},
		{Key: "versionName", Value: d.VersionName},
		{Key: "toolchainVersion", Value: d.ToolchainVersion},
		{Key: "javaVersion", Value: d.JavaVersion},
		{Key: "signingProfile", Value: d.SigningProfile.String()},
	}
}

// KeyValue is a single named descriptor value.
type KeyValue struct {
	Key   string
	Value any
}
