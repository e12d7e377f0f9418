// Package protect holds the registry of filesystem locations whose deletion
// or modification is always treated as catastrophic.
package protect

import (
	"sort"
	"strings"

	"github.com/lossguard/lossguard/internal/normalize"
)

// Entry sources, reported by Entries for display.
const (
	SourceBuiltin = "builtin"
	SourceHome    = "home"
	SourceConfig  = "config"
)

// systemRoots are always registered. Losing any of these is unrecoverable
// without reinstalling or restoring from backup.
var systemRoots = []string{
	"/",
	"/bin",
	"/boot",
	"/dev",
	"/etc",
	"/etc/fstab",
	"/etc/hosts",
	"/etc/passwd",
	"/etc/shadow",
	"/etc/sudoers",
	"/home",
	"/lib",
	"/lib64",
	"/opt",
	"/root",
	"/sbin",
	"/srv",
	"/sys",
	"/usr",
	"/usr/bin",
	"/usr/lib",
	"/usr/local",
	"/var",
	"/var/log",
	"/Applications",
	"/Library",
	"/System",
}

// DefaultHomeSubdirs are the home subdirectories registered in addition to
// the home directory itself.
var DefaultHomeSubdirs = []string{
	".ssh",
	".gnupg",
	".config",
	".aws",
	".kube",
	"Documents",
	"Desktop",
}

// Entry is one registered path with the source it came from.
type Entry struct {
	Path   string
	Source string
}

// Registry is the immutable set of protected paths. Build it once at startup
// and share it freely; it holds no mutable state after New returns.
type Registry struct {
	resolver *normalize.Resolver
	entries  []Entry
	exact    map[string]struct{}
}

// Options configures registry construction. A nil HomeSubdirs means
// DefaultHomeSubdirs; an empty non-nil slice registers none.
type Options struct {
	HomeSubdirs []string
	ExtraPaths  []string
}

// New builds a registry from the built-in system roots, the resolver's home
// directory plus subdirectories, and any extra absolute paths. Every entry is
// resolved to its absolute, trailing-slash-free form and deduplicated.
func New(resolver *normalize.Resolver, opts Options) *Registry {
	if resolver == nil {
		resolver = normalize.DefaultResolver()
	}

	r := &Registry{
		resolver: resolver,
		exact:    make(map[string]struct{}),
	}

	for _, p := range systemRoots {
		r.add(p, SourceBuiltin)
	}

	if home := resolver.HomeDir(); home != "" {
		r.add(home, SourceHome)
		subdirs := opts.HomeSubdirs
		if subdirs == nil {
			subdirs = DefaultHomeSubdirs
		}
		for _, sub := range subdirs {
			r.add(resolver.Resolve(sub, home), SourceHome)
		}
	}

	for _, p := range opts.ExtraPaths {
		// Relative config entries anchor at home rather than some incidental cwd.
		r.add(resolver.Resolve(p, resolver.HomeDir()), SourceConfig)
	}

	return r
}

func (r *Registry) add(path, source string) {
	cleaned := r.resolver.Resolve(path, "/")
	if _, dup := r.exact[cleaned]; dup {
		return
	}
	r.exact[cleaned] = struct{}{}
	r.entries = append(r.entries, Entry{Path: cleaned, Source: source})
}

// IsProtected reports whether removing or rewriting target would destroy a
// registered path: either target resolves to a registered path exactly, or a
// registered path lies strictly beneath it. A target strictly inside a
// registered path is deliberately NOT flagged here; the size heuristic is
// what covers those.
func (r *Registry) IsProtected(target, cwd string) bool {
	resolved := r.resolver.Resolve(target, cwd)

	if _, ok := r.exact[resolved]; ok {
		return true
	}

	prefix := resolved
	if prefix != "/" {
		prefix += "/"
	}
	for _, e := range r.entries {
		if e.Path != resolved && strings.HasPrefix(e.Path, prefix) {
			return true
		}
	}
	return false
}

// Entries returns the registered paths sorted lexically, for display.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Paths returns just the sorted registered paths.
func (r *Registry) Paths() []string {
	entries := r.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}
