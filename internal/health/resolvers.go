package health

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"

	"github.com/alterego/alterego/internal/types"
)

// PythonModuleResolver locates python modules on disk the way the import
// system would, without running an interpreter.
type PythonModuleResolver struct {
	// Paths are searched in order
	Paths []string
}

// NewPythonModuleResolver builds the search path from explicit entries,
// PYTHONPATH, an active virtualenv or conda env, the workspace .venv, the
// prefixes of the python interpreters on PATH, pyenv versions and common
// system site-packages locations. Nonexistent directories are dropped.
func NewPythonModuleResolver(root string, extra []string) *PythonModuleResolver {
	var candidates []string
	candidates = append(candidates, extra...)

	if pp := os.Getenv("PYTHONPATH"); pp != "" {
		candidates = append(candidates, filepath.SplitList(pp)...)
	}
	if venv := os.Getenv("VIRTUAL_ENV"); venv != "" {
		candidates = append(candidates, sitePackages(venv)...)
	}
	if conda := os.Getenv("CONDA_PREFIX"); conda != "" {
		candidates = append(candidates, sitePackages(conda)...)
	}
	if root != "" {
		candidates = append(candidates, sitePackages(filepath.Join(root, ".venv"))...)
	}
	for _, prefix := range interpreterPrefixes() {
		candidates = append(candidates, sitePackages(prefix)...)
	}
	for _, prefix := range pyenvVersions() {
		candidates = append(candidates, sitePackages(prefix)...)
	}
	for _, prefix := range []string{"/usr/local", "/usr", "/opt/homebrew"} {
		candidates = append(candidates, sitePackages(prefix)...)
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, sitePackages(filepath.Join(home, ".local"))...)
	}

	seen := make(map[string]bool)
	var paths []string
	for _, p := range candidates {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			paths = append(paths, p)
		}
	}

	return &PythonModuleResolver{Paths: paths}
}

// interpreterPrefixes resolves python3 and python on PATH to their install
// prefix (the parent of the bin directory). This covers framework builds,
// conda bases and anything else installed outside the usual prefixes.
func interpreterPrefixes() []string {
	var prefixes []string
	for _, name := range []string{"python3", "python"} {
		bin, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		if resolved, err := filepath.EvalSymlinks(bin); err == nil {
			bin = resolved
		}
		if abs, err := filepath.Abs(bin); err == nil {
			bin = abs
		}
		prefixes = append(prefixes, filepath.Dir(filepath.Dir(bin)))
	}
	return prefixes
}

// pyenvVersions lists installed pyenv versions. pyenv puts shell shims on
// PATH, so interpreterPrefixes cannot see through to them.
func pyenvVersions() []string {
	root := os.Getenv("PYENV_ROOT")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		root = filepath.Join(home, ".pyenv")
	}
	versions, _ := filepath.Glob(filepath.Join(root, "versions", "*"))
	return versions
}

// sitePackages globs the site-packages and dist-packages dirs under prefix.
func sitePackages(prefix string) []string {
	var out []string
	for _, pattern := range []string{
		filepath.Join(prefix, "lib", "python3*", "site-packages"),
		filepath.Join(prefix, "lib", "python3*", "dist-packages"),
		filepath.Join(prefix, "lib", "python3", "dist-packages"),
		filepath.Join(prefix, "Lib", "site-packages"),
	} {
		matches, _ := filepath.Glob(pattern)
		out = append(out, matches...)
	}
	return out
}

// Resolve reports whether the dotted module path exists as a package,
// a namespace package, a source module or an extension module.
func (r *PythonModuleResolver) Resolve(ctx context.Context, dep DependencyDescriptor) (bool, error) {
	if dep.Capability == "" {
		return false, errors.New("empty module name")
	}
	rel := filepath.Join(strings.Split(dep.Capability, ".")...)

	for _, dir := range r.Paths {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		base := filepath.Join(dir, rel)
		if info, err := os.Stat(base); err == nil && info.IsDir() {
			// Regular or namespace package
			return true, nil
		}
		if _, err := os.Stat(base + ".py"); err == nil {
			return true, nil
		}
		for _, ext := range []string{".*.so", ".so", ".*.pyd", ".pyd"} {
			if matches, _ := filepath.Glob(base + ext); len(matches) > 0 {
				return true, nil
			}
		}
	}
	return false, nil
}

// ExecutableResolver looks a command up on PATH without running it.
type ExecutableResolver struct{}

// Resolve reports whether the capability is an executable on PATH.
func (ExecutableResolver) Resolve(_ context.Context, dep DependencyDescriptor) (bool, error) {
	if _, err := exec.LookPath(dep.Capability); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("looking up %s: %w", dep.Capability, err)
	}
	return true, nil
}

// GoModuleResolver checks that a module is required by a go.mod file,
// optionally at a minimum version.
type GoModuleResolver struct {
	GoModPath string

	once     sync.Once
	required map[string]string
	err      error
}

// NewGoModuleResolver creates a resolver for the given go.mod path.
func NewGoModuleResolver(goModPath string) *GoModuleResolver {
	return &GoModuleResolver{GoModPath: goModPath}
}

func (r *GoModuleResolver) load() {
	data, err := os.ReadFile(r.GoModPath)
	if err != nil {
		r.err = fmt.Errorf("reading go.mod: %w", err)
		return
	}

	mf, err := modfile.Parse(r.GoModPath, data, nil)
	if err != nil {
		r.err = fmt.Errorf("parsing go.mod: %w", err)
		return
	}

	r.required = make(map[string]string, len(mf.Require))
	for _, req := range mf.Require {
		r.required[req.Mod.Path] = req.Mod.Version
	}
}

// Resolve reports whether the module is required, at or above MinVersion
// when one is given.
func (r *GoModuleResolver) Resolve(_ context.Context, dep DependencyDescriptor) (bool, error) {
	r.once.Do(r.load)
	if r.err != nil {
		return false, r.err
	}

	version, ok := r.required[dep.Capability]
	if !ok {
		return false, nil
	}
	if dep.MinVersion == "" {
		return true, nil
	}
	if !semver.IsValid(dep.MinVersion) {
		return false, fmt.Errorf("invalid min_version %q for %s", dep.MinVersion, dep.Capability)
	}
	return semver.Compare(version, dep.MinVersion) >= 0, nil
}

// MultiResolver dispatches on types.DependencyKind.
type MultiResolver map[types.DependencyKind]Resolver

// Resolve delegates to the resolver registered for the descriptor's kind.
func (m MultiResolver) Resolve(ctx context.Context, dep DependencyDescriptor) (bool, error) {
	r, ok := m[dep.Kind]
	if !ok {
		return false, fmt.Errorf("no resolver for kind %q", dep.Kind)
	}
	return r.Resolve(ctx, dep)
}
