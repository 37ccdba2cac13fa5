// Package config loads leapbuild project files.
// This package is decoupled from CLI concerns: it only knows how to find and
// parse a project file and what the built-in defaults are.
package config

import (
	"github.com/leapstack-labs/leapbuild/pkg/core"
	"github.com/leapstack-labs/leapbuild/pkg/resolve"
)

// Top-level sections of a project file.
const (
	SectionAndroid = "android"
	SectionPolicy  = "policy"
)

// Project is a loaded project file.
type Project struct {
	Path   string // absolute path of the project file
	Root   string // directory containing the project file
	Config core.ProjectConfig
}

// Layer returns the file's build overrides as a resolver layer.
func (p *Project) Layer() resolve.Layer {
	values := make(resolve.Values, len(p.Config.Android))
	for k, v := range p.Config.Android {
		values[k] = v
	}
	return resolve.Layer{Name: resolve.SourceFile, Values: values}
}
