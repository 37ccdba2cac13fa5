package config

import (
	"github.com/leapstack-labs/leapbuild/pkg/core"
	"github.com/leapstack-labs/leapbuild/pkg/resolve"
)

// Default build values.
const (
	DefaultApplicationID          = "com.example.app"
	DefaultMinPlatformVersion     = 21
	DefaultTargetPlatformVersion  = 33
	DefaultCompilePlatformVersion = 34
	DefaultVersionCode            = 1
	DefaultVersionName            = "1.0"
	DefaultToolchainVersion       = "27.0"
	DefaultJavaVersion            = 11
)

// DefaultSet is a complete set of compile-time build defaults. It is passed
// by value to whoever needs it; there is no package-level mutable copy.
type DefaultSet struct {
	ApplicationID          string
	Namespace              string // empty means "same as ApplicationID"
	MinPlatformVersion     int
	TargetPlatformVersion  int
	CompilePlatformVersion int
	VersionCode            int
	VersionName            string
	ToolchainVersion       string
	JavaVersion            int
	SigningProfile         core.SigningProfile
}

// BuiltinDefaults returns the defaults compiled into leapbuild.
func BuiltinDefaults() DefaultSet {
	return DefaultSet{
		ApplicationID:          DefaultApplicationID,
		MinPlatformVersion:     DefaultMinPlatformVersion,
		TargetPlatformVersion:  DefaultTargetPlatformVersion,
		CompilePlatformVersion: DefaultCompilePlatformVersion,
		VersionCode:            DefaultVersionCode,
		VersionName:            DefaultVersionName,
		ToolchainVersion:       DefaultToolchainVersion,
		JavaVersion:            DefaultJavaVersion,
		SigningProfile:         core.SigningDebug,
	}
}

// Values returns a fresh map declaring every schema key. Callers may modify
// the result without affecting d.
func (d DefaultSet) Values() resolve.Values {
	return resolve.Values{
		resolve.KeyApplicationID:          d.ApplicationID,
		resolve.KeyNamespace:              d.Namespace,
		resolve.KeyMinPlatformVersion:     d.MinPlatformVersion,
		resolve.KeyTargetPlatformVersion:  d.TargetPlatformVersion,
		resolve.KeyCompilePlatformVersion: d.CompilePlatformVersion,
		resolve.KeyVersionCode:            d.VersionCode,
		resolve.KeyVersionName:            d.VersionName,
		resolve.KeyToolchainVersion:       d.ToolchainVersion,
		resolve.KeyJavaVersion:            d.JavaVersion,
		resolve.KeySigningProfile:         d.SigningProfile.String(),
	}
}
