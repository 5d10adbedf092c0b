package types

// DependencyKind selects how a capability is resolved.
type DependencyKind string

const (
	KindPython DependencyKind = "python" // importable python module
	KindExec   DependencyKind = "exec"   // executable on PATH
	KindGoMod  DependencyKind = "gomod"  // module required by the workspace go.mod
)

// IsValid checks if the kind value is valid
func (k DependencyKind) IsValid() bool {
	switch k {
	case KindPython, KindExec, KindGoMod:
		return true
	}
	return false
}
