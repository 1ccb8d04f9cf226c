// pkg/privilege/privilege.go - checks whether this process may run installers.

package privilege

// Checker reports whether the current process can install software system-wide.
type Checker interface {
	HasInstallPrivilege() bool
}

// Static is a Checker with a fixed answer.
type Static bool

func (s Static) HasInstallPrivilege() bool { return bool(s) }

// System checks the real process token.
type System struct{}

// HasInstallPrivilege reports whether the process is elevated. Lookup
// failures count as not elevated.
func (System) HasInstallPrivilege() bool {
	ok, err := isElevated()
	return err == nil && ok
}
