//go:build !unix

package privilege

import (
	"errors"
	"os"
	"os/exec"
)

// IsElevated always reports false where there is no effective uid.
func IsElevated() bool {
	return false
}

// defaultExec runs argv as a child attached to this console and exits with
// its status once it finishes.
func defaultExec(argv0 string, argv []string, env []string) error {
	cmd := exec.Command(argv0, argv[1:]...)
	cmd.Env = env
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Start(); err != nil {
		return err
	}
	err := cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.ExitCode())
	}
	if err != nil {
		return err
	}
	os.Exit(0)
	return nil
}
