//go:build unix

package privilege

import "golang.org/x/sys/unix"

// IsElevated reports whether the effective user is root.
func IsElevated() bool {
	return unix.Geteuid() == 0
}

// defaultExec replaces the process image, keeping the pid and terminal.
func defaultExec(argv0 string, argv []string, env []string) error {
	return unix.Exec(argv0, argv, env)
}
