package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"example.com/simplewebserver/internal/commands"
	"example.com/simplewebserver/internal/config"
	"example.com/simplewebserver/internal/handlers/staticfile"
	"example.com/simplewebserver/internal/launch"
	"example.com/simplewebserver/internal/logger"
	"example.com/simplewebserver/internal/privilege"
	"example.com/simplewebserver/internal/server"
)

// settingsDisabled turns off remembering the last folder and port.
const settingsDisabled = "-"

type relauncher interface {
	Relaunch(elevated bool, scheme config.Scheme, port int) error
}

// Swapped out in tests.
var (
	isElevated    = privilege.IsElevated
	newController = func(rootFolder string, extraArgs []string, console *logger.Console) (relauncher, error) {
		return privilege.NewController(rootFolder, extraArgs, console)
	}
)

type options struct {
	configPath   string
	scheme       string
	openBrowser  bool
	settingsPath string
	positional   []string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("simplewebserver", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to an optional configuration file (JSON, TOML or YAML)")
	fs.StringVar(&opts.scheme, "scheme", string(config.SchemeHTTP), "Scheme to serve: http or https")
	fs.BoolVar(&opts.openBrowser, "open", false, "Open the server URL in the default browser after start")
	fs.StringVar(&opts.settingsPath, "settings", "", "Settings file remembering the last folder and port ('-' disables)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), launch.Usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	opts.positional = fs.Args()

	if opts.configPath != "" {
		abs, err := filepath.Abs(opts.configPath)
		if err != nil {
			return options{}, fmt.Errorf("error getting absolute path for config file %s: %w", opts.configPath, err)
		}
		opts.configPath = abs
	}
	return opts, nil
}

// passthroughArgs are the flags a relaunched process must see again.
func (o options) passthroughArgs() []string {
	var args []string
	if o.configPath != "" {
		args = append(args, "-config", o.configPath)
	}
	if o.settingsPath != "" {
		args = append(args, "-settings", o.settingsPath)
	}
	return args
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(parent context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	console := logger.NewConsole(stdout)
	console.PrintBanner()

	scheme, err := config.ParseScheme(opts.scheme)
	if err != nil {
		console.Log(err.Error(), logger.ColorRed)
		return 2
	}

	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		cfg, err = config.LoadConfig(opts.configPath)
		if err != nil {
			console.Logf(logger.ColorRed, "Failed to load configuration from %s: %v", opts.configPath, err)
			return 1
		}
	}

	settingsPath := opts.settingsPath
	switch settingsPath {
	case settingsDisabled:
		settingsPath = ""
	case "":
		if settingsPath, err = config.DefaultSettingsPath(); err != nil {
			console.Log(err.Error(), logger.ColorYellow)
			settingsPath = ""
		}
	}

	in := bufio.NewReader(stdin)
	elevated := isElevated()
	lanHost := ""
	if cfg.Server.LANAddress != nil {
		lanHost = *cfg.Server.LANAddress
	}
	lc, err := launch.Resolve(opts.positional, launch.Options{
		Scheme:       scheme,
		Elevated:     elevated,
		LANHost:      lanHost,
		SettingsPath: settingsPath,
		Prompter:     launch.LinePrompter{In: in, Console: console},
		Console:      console,
	})
	if err != nil {
		var cerr *launch.ConfigurationError
		if errors.As(err, &cerr) && cerr.Kind == launch.Aborted {
			console.Log("You can now close this window", logger.ColorDefault)
			return 0
		}
		console.Log(err.Error(), logger.ColorRed)
		return 1
	}

	appLogger, err := logger.NewLogger(cfg.Logging)
	if err != nil {
		console.Logf(logger.ColorRed, "Failed to initialize logger: %v", err)
		return 1
	}
	defer func() {
		if err := appLogger.CloseLogFiles(); err != nil {
			log.Printf("Error closing log files during shutdown: %v", err)
		}
	}()

	mimes, err := staticfile.NewMimeTypeResolver(cfg.MimeTypes)
	if err != nil {
		console.Logf(logger.ColorRed, "Invalid mime_types: %v", err)
		return 1
	}
	handler, err := staticfile.New(lc, mimes, appLogger, console)
	if err != nil {
		console.Logf(logger.ColorRed, "Failed to create static file handler: %v", err)
		return 1
	}
	srv, err := server.NewServer(lc, cfg, appLogger, handler)
	if err != nil {
		console.Logf(logger.ColorRed, "Failed to create server: %v", err)
		return 1
	}

	if err := srv.Start(); err != nil {
		console.Logf(logger.ColorRed, "Failed to start server: %v", err)
		return 1
	}

	served := srv.LaunchConfig()
	console.Log("Serving directory: "+served.RootFolder(), logger.ColorDefault)
	for i := range served.BindAddresses() {
		console.Log("Listening for requests on "+served.URL(i), logger.ColorGreen)
	}
	if !served.AllowExternalConnections() {
		console.Log("External connections are refused; restart as admin (a) to allow them.", logger.ColorGray)
	}
	if opts.openBrowser {
		if err := commands.OpenBrowser(lc.URL(0)); err != nil {
			console.Log("Error launching browser: "+err.Error(), logger.ColorRed)
		}
	}

	sigCtx, stopSignals := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	runCtx, cancelRun := context.WithCancel(sigCtx)
	defer cancelRun()

	dispatcher := &commands.Dispatcher{In: in, Console: console, URL: lc.URL(0)}
	dispatcher.PrintHelp()
	cmdCh := make(chan commands.Command, 1)
	go func() {
		cmd := dispatcher.Run(runCtx)
		cmdCh <- cmd
		if cmd != commands.None {
			cancelRun()
		}
	}()

	waitErr := srv.Wait(runCtx)
	cancelRun()
	cmd := <-cmdCh
	if waitErr != nil {
		appLogger.Error("Server stopped with error", logger.LogFields{"error": waitErr.Error()})
		console.Log(waitErr.Error(), logger.ColorRed)
		return 1
	}

	switch cmd {
	case commands.ToggleScheme:
		return relaunch(opts, lc, console, lc.AllowExternalConnections(), lc.Scheme().Toggle())
	case commands.ToggleAdmin:
		return relaunch(opts, lc, console, !elevated, lc.Scheme())
	default:
		console.Log("Server stopped.", logger.ColorGray)
		return 0
	}
}

// relaunch replaces the process with one serving the same folder and port
// under the new scheme and privilege. It only returns on failure, or in
// tests where the exec step is replaced.
func relaunch(opts options, lc config.LaunchConfig, console *logger.Console, elevated bool, scheme config.Scheme) int {
	ctrl, err := newController(lc.RootFolder(), opts.passthroughArgs(), console)
	if err != nil {
		console.Log(err.Error(), logger.ColorRed)
		return 1
	}
	if err := ctrl.Relaunch(elevated, scheme, lc.Port()); err != nil {
		return 1
	}
	return 0
}
