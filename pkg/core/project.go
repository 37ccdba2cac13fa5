package core

// ProjectConfig is the decoded content of a leapbuild project file.
type ProjectConfig struct {
	// Android holds build property overrides keyed by resolver key name.
	Android map[string]any `koanf:"android"`

	// Policy holds externally mandated constraints.
	Policy Constraints `koanf:"policy"`
}

// Constraints are policy values injected into resolution. They only ever
// tighten validation.
type Constraints struct {
	// MinPlatformFloor is the lowest minPlatformVersion any build may declare,
	// typically imposed by a third-party SDK. Zero disables the check.
	MinPlatformFloor int `koanf:"minPlatformFloor"`
}
