// Package resolve turns layered raw build properties into a validated
// core.BuildDescriptor.
//
// Resolution is a pure function of its inputs: a defaults set, one or more
// override layers and an optional set of injected policy constraints. Layers
// are merged key-by-key with later layers taking precedence, then every value
// is checked against the schema in a fixed order:
//
//  1. unknown keys
//  2. missing required keys
//  3. type coercion
//  4. constraints (platform version ordering, version code, policy floor)
//
// The first failure is returned as a *ValidationError and no partial
// descriptor is ever produced.
package resolve
