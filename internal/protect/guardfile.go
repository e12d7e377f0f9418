package protect

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GuardFile is the optional YAML document extending the registry, normally
// at ~/.lossguard/protected.yaml:
//
//	protected_paths:
//	  - /srv/data
//	  - ~/research
//	home_subdirs:
//	  - .ssh
//	  - Projects
//
// home_subdirs, when present, replaces the default subdirectory list.
type GuardFile struct {
	ProtectedPaths []string `yaml:"protected_paths"`
	HomeSubdirs    []string `yaml:"home_subdirs"`
}

// LoadGuardFile reads a guard file. A missing file is not an error: the zero
// document comes back and the registry falls back to its defaults.
func LoadGuardFile(path string) (*GuardFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GuardFile{}, nil
		}
		return nil, fmt.Errorf("read guard file: %w", err)
	}

	var gf GuardFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("parse guard file %s: %w", path, err)
	}
	return &gf, nil
}

// Merge folds the guard file into registry options: its protected paths
// append to the extras, and its subdirectory list, when present, replaces
// the one in opts — the guard file is the authoritative document for what
// is protected.
func (gf *GuardFile) Merge(opts Options) Options {
	if gf == nil {
		return opts
	}
	out := opts
	out.ExtraPaths = append(append([]string{}, opts.ExtraPaths...), gf.ProtectedPaths...)
	if gf.HomeSubdirs != nil {
		out.HomeSubdirs = gf.HomeSubdirs
	}
	return out
}
