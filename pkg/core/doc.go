// Package core defines the shared language of leapbuild.
//
// This package contains:
//   - The resolved build descriptor (BuildDescriptor)
//   - Signing profile enumeration (SigningProfile)
//   - Project file and policy types (ProjectConfig, Constraints)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
