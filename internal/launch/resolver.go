// Package launch turns command-line arguments, persisted settings and the
// process's privilege state into a validated config.LaunchConfig.
package launch

import (
	"os"
	"path/filepath"
	"strconv"

	"example.com/simplewebserver/internal/config"
	"example.com/simplewebserver/internal/logger"
	"example.com/simplewebserver/internal/util"
)

// DefaultPort is used when no port is given.
const DefaultPort = 8080

// Usage is printed for malformed argument lists.
const Usage = "Usage: simplewebserver [-scheme http|https] [-open] [-config file] [folderpath] [port]"

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(question string) bool
}

// Options carries everything Resolve needs besides the positional arguments.
type Options struct {
	Scheme   config.Scheme
	Elevated bool

	// ExecutableDir is served when only a port, or nothing, is given.
	ExecutableDir string

	// LANHost overrides LAN address discovery when non-empty.
	LANHost string

	// SettingsPath is where the last folder and port are remembered. Empty
	// disables both loading and saving.
	SettingsPath string

	// Prompter answers the zero-argument questions. Nil answers no.
	Prompter Prompter
	Console  *logger.Console

	// Overridable for tests.
	PortAvailable func(port int) bool
	LANAddress    func() (string, error)
}

func (o *Options) defaults() {
	if o.Scheme == "" {
		o.Scheme = config.SchemeHTTP
	}
	if o.ExecutableDir == "" {
		o.ExecutableDir = ExecutableDir()
	}
	if o.PortAvailable == nil {
		o.PortAvailable = util.PortAvailable
	}
	if o.LANAddress == nil {
		o.LANAddress = util.LANAddress
	}
}

func (o *Options) confirm(question string) bool {
	if o.Prompter == nil {
		return false
	}
	return o.Prompter.Confirm(question)
}

// ExecutableDir returns the directory holding the running binary, or the
// working directory when that cannot be determined.
func ExecutableDir() string {
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	wd, _ := os.Getwd()
	return wd
}

// Resolve disambiguates args ([folder] [port]) and returns the launch tuple.
//
//	two args   folder + port
//	one arg    an existing directory (default port) or an integer port
//	           (executable directory)
//	zero args  the remembered project folder or the executable directory,
//	           each only after the prompter confirms
//
// The folder must be an existing directory and nothing may be listening on
// the port. On success the folder and port are remembered.
func Resolve(args []string, opts Options) (config.LaunchConfig, error) {
	opts.defaults()

	folder, portArg, err := pickFolderAndPort(args, &opts)
	if err != nil {
		return config.LaunchConfig{}, err
	}

	if info, err := os.Stat(folder); err != nil || !info.IsDir() {
		return config.LaunchConfig{}, &ConfigurationError{Kind: FolderMissing, Value: folder, Err: err}
	}
	port, err := strconv.Atoi(portArg)
	if err != nil {
		return config.LaunchConfig{}, &ConfigurationError{Kind: InvalidArguments, Value: portArg}
	}
	if port < 1 || port > 65535 || !opts.PortAvailable(port) {
		return config.LaunchConfig{}, &ConfigurationError{Kind: PortUnavailable, Value: portArg}
	}

	lanHost := ""
	if opts.Elevated {
		lanHost = opts.LANHost
		if lanHost == "" {
			if addr, err := opts.LANAddress(); err == nil {
				lanHost = addr
			} else {
				opts.Console.Logf(logger.ColorYellow, "No LAN address found, serving on localhost only: %v", err)
			}
		}
	}

	lc, err := config.NewLaunchConfig(folder, port, opts.Scheme, opts.Elevated, lanHost)
	if err != nil {
		return config.LaunchConfig{}, &ConfigurationError{Kind: InvalidArguments, Err: err}
	}

	if opts.SettingsPath != "" {
		if err := config.SaveSettings(opts.SettingsPath, config.Settings{ProjectPath: lc.RootFolder(), Port: port}); err != nil {
			opts.Console.Logf(logger.ColorRed, "Failed to save settings to %s", opts.SettingsPath)
		} else {
			opts.Console.Logf(logger.ColorGray, "Saved settings to %s", opts.SettingsPath)
		}
	}
	return lc, nil
}

func pickFolderAndPort(args []string, opts *Options) (folder, port string, err error) {
	defaultPort := strconv.Itoa(DefaultPort)

	switch len(args) {
	case 2:
		return args[0], args[1], nil
	case 1:
		if info, statErr := os.Stat(args[0]); statErr == nil && info.IsDir() {
			return args[0], defaultPort, nil
		}
		if _, convErr := strconv.Atoi(args[0]); convErr == nil {
			return opts.ExecutableDir, args[0], nil
		}
		return "", "", &ConfigurationError{Kind: InvalidArguments, Value: args[0]}
	case 0:
		return promptForFolder(opts)
	default:
		return "", "", &ConfigurationError{Kind: InvalidArguments}
	}
}

func promptForFolder(opts *Options) (folder, port string, err error) {
	defaultPort := strconv.Itoa(DefaultPort)
	opts.Console.Log(Usage, logger.ColorDefault)

	if opts.SettingsPath != "" {
		opts.Console.Logf(logger.ColorGray, "Loading settings from: %s", opts.SettingsPath)
		settings, loadErr := config.LoadSettings(opts.SettingsPath)
		if loadErr != nil {
			opts.Console.Log(loadErr.Error(), logger.ColorRed)
		}
		if settings.ProjectPath != "" {
			if info, statErr := os.Stat(settings.ProjectPath); statErr == nil && info.IsDir() &&
				opts.confirm("Do you want to start in previous Project folder: "+settings.ProjectPath+" ? (y/N)") {
				if settings.Port > 0 {
					return settings.ProjectPath, strconv.Itoa(settings.Port), nil
				}
				return settings.ProjectPath, defaultPort, nil
			}
		}
	}

	if opts.confirm("Do you want to start server in the current folder: " + opts.ExecutableDir + " ? (y/N)") {
		return opts.ExecutableDir, defaultPort, nil
	}
	return "", "", &ConfigurationError{Kind: Aborted}
}
