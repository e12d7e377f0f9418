// Package normalize turns loosely-written path text from shell commands into
// absolute, cleaned filesystem paths.
package normalize

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolver expands home-directory shorthand and resolves relative paths
// against a working directory. The home directory is fixed at construction so
// resolution never consults the environment afterwards.
type Resolver struct {
	homeDir string
}

// NewResolver returns a Resolver using the given home directory. An empty
// homeDir disables tilde and $HOME expansion.
func NewResolver(homeDir string) *Resolver {
	return &Resolver{homeDir: homeDir}
}

// DefaultResolver returns a Resolver bound to the current user's home
// directory. If the home directory cannot be determined, expansion is
// disabled rather than failing.
func DefaultResolver() *Resolver {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}
	return NewResolver(homeDir)
}

// HomeDir returns the home directory the resolver expands to.
func (r *Resolver) HomeDir() string {
	return r.homeDir
}

// Resolve converts target into an absolute, cleaned path. Leading `~`, `~/`,
// `$HOME`, and `${HOME}` expand to the resolver's home directory; anything
// still relative is joined onto cwd. Resolve never fails: text it cannot
// interpret is treated as a literal relative path.
func (r *Resolver) Resolve(target, cwd string) string {
	p := r.expandHome(target)

	if !filepath.IsAbs(p) {
		p = filepath.Join(cwd, p)
	}

	return filepath.Clean(p)
}

func (r *Resolver) expandHome(p string) string {
	if r.homeDir == "" {
		return p
	}

	switch {
	case p == "~":
		return r.homeDir
	case strings.HasPrefix(p, "~/"):
		return filepath.Join(r.homeDir, p[2:])
	}

	for _, prefix := range []string{"${HOME}", "$HOME"} {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := p[len(prefix):]
		// Require a path boundary so $HOMEBREW-style names stay literal.
		if rest == "" {
			return r.homeDir
		}
		if rest[0] == '/' {
			return filepath.Join(r.homeDir, rest[1:])
		}
	}

	return p
}
