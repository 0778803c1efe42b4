// Package privilege detects whether the process runs elevated and replaces
// the process with a copy of itself under a different (scheme, privilege)
// pair.
package privilege

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"example.com/simplewebserver/internal/config"
	"example.com/simplewebserver/internal/logger"
)

// ExecFunc replaces or restarts the process with argv. It only returns on
// failure.
type ExecFunc func(argv0 string, argv []string, env []string) error

// Controller rebuilds the argument list of the running server and relaunches
// it. The caller stops its engine before calling Relaunch.
type Controller struct {
	Executable string
	RootFolder string
	// ExtraArgs are flags passed through unchanged, e.g. -config <file>.
	ExtraArgs []string
	Env       []string
	Console   *logger.Console

	exec        ExecFunc
	lookPath    func(file string) (string, error)
	isElevated  func() bool
	lookupEnvFn func(key string) (string, bool)
}

// NewController targets the running executable.
func NewController(rootFolder string, extraArgs []string, console *logger.Console) (*Controller, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}
	return &Controller{
		Executable:  exe,
		RootFolder:  rootFolder,
		ExtraArgs:   extraArgs,
		Env:         os.Environ(),
		Console:     console,
		exec:        defaultExec,
		lookPath:    exec.LookPath,
		isElevated:  IsElevated,
		lookupEnvFn: os.LookupEnv,
	}, nil
}

// Args is the argument list (without argv[0]) a relaunch passes.
func (c *Controller) Args(scheme config.Scheme, port int) []string {
	args := make([]string, 0, len(c.ExtraArgs)+4)
	args = append(args, c.ExtraArgs...)
	return append(args, "-scheme", string(scheme), c.RootFolder, strconv.Itoa(port))
}

// Command returns the program and argv used to relaunch with the requested
// privilege. Gaining privilege wraps the executable with sudo; dropping it
// from a sudo session runs it as SUDO_USER; otherwise the executable is run
// directly.
func (c *Controller) Command(elevated bool, scheme config.Scheme, port int) (string, []string, error) {
	args := c.Args(scheme, port)
	current := c.isElevated()

	switch {
	case elevated && !current:
		sudo, err := c.lookPath("sudo")
		if err != nil {
			return "", nil, fmt.Errorf("cannot elevate: %w", err)
		}
		return sudo, append([]string{"sudo", c.Executable}, args...), nil
	case !elevated && current:
		user, ok := c.lookupEnvFn("SUDO_USER")
		if !ok || user == "" || user == "root" {
			return "", nil, fmt.Errorf("cannot drop privileges: not started through sudo")
		}
		sudo, err := c.lookPath("sudo")
		if err != nil {
			return "", nil, fmt.Errorf("cannot drop privileges: %w", err)
		}
		return sudo, append([]string{"sudo", "-u", user, c.Executable}, args...), nil
	default:
		return c.Executable, append([]string{c.Executable}, args...), nil
	}
}

// Relaunch replaces the current process. On success it does not return.
func (c *Controller) Relaunch(elevated bool, scheme config.Scheme, port int) error {
	argv0, argv, err := c.Command(elevated, scheme, port)
	if err != nil {
		c.Console.Log("Error restarting: "+err.Error(), logger.ColorRed)
		return err
	}
	mode := "non-admin"
	if elevated {
		mode = "admin"
	}
	c.Console.Logf(logger.ColorGray, "Restarting as %s with %s ...", mode, scheme)
	if err := c.exec(argv0, argv, c.Env); err != nil {
		c.Console.Log("Error restarting: "+err.Error(), logger.ColorRed)
		return fmt.Errorf("relaunch %s: %w", argv0, err)
	}
	return nil
}
