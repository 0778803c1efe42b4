// Package commands reads single-letter console commands while the server
// runs.
package commands

import (
	"bufio"
	"context"
	"strings"

	"example.com/simplewebserver/internal/logger"
)

// Command is one console instruction.
type Command int

const (
	None Command = iota
	OpenBrowserCmd
	ToggleScheme
	ToggleAdmin
	Quit
	Help
)

func (c Command) String() string {
	switch c {
	case OpenBrowserCmd:
		return "open"
	case ToggleScheme:
		return "toggle-scheme"
	case ToggleAdmin:
		return "toggle-admin"
	case Quit:
		return "quit"
	case Help:
		return "help"
	default:
		return "none"
	}
}

// Parse maps an input line to a Command. Anything unrecognised is Help.
func Parse(line string) Command {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "o":
		return OpenBrowserCmd
	case "s":
		return ToggleScheme
	case "a":
		return ToggleAdmin
	case "q":
		return Quit
	default:
		return Help
	}
}

const helpText = `Commands:
  o  open the server URL in the browser
  s  toggle http/https (restarts)
  a  toggle admin/non-admin (restarts)
  q  quit
  h  this help`

// Dispatcher handles o and h itself and hands every command that ends the
// current engine back to the caller.
type Dispatcher struct {
	In      *bufio.Reader
	Console *logger.Console
	// URL is opened by the o command.
	URL  string
	Open func(url string) error
}

// PrintHelp writes the command list.
func (d *Dispatcher) PrintHelp() {
	d.Console.Log(helpText, logger.ColorGray)
}

// Run reads commands until one of ToggleScheme, ToggleAdmin or Quit arrives,
// and returns it. It returns None when input ends or ctx is done.
func (d *Dispatcher) Run(ctx context.Context) Command {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := d.In.ReadString('\n')
			if line != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return None
		case line, ok := <-lines:
			if !ok {
				return None
			}
			switch cmd := Parse(line); cmd {
			case OpenBrowserCmd:
				d.openBrowser()
			case Help:
				d.PrintHelp()
			default:
				return cmd
			}
		}
	}
}

func (d *Dispatcher) openBrowser() {
	open := d.Open
	if open == nil {
		open = OpenBrowser
	}
	d.Console.Logf(logger.ColorGray, "Opening %s", d.URL)
	if err := open(d.URL); err != nil {
		d.Console.Log("Error launching browser: "+err.Error(), logger.ColorRed)
	}
}
