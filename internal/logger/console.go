package logger

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// ColorHint selects the foreground colour of a console line.
type ColorHint int

const (
	ColorDefault ColorHint = iota
	ColorGray
	ColorCyan
	ColorGreen
	ColorYellow
	ColorRed
)

var hintAttrs = map[ColorHint]color.Attribute{
	ColorDefault: color.FgWhite,
	ColorGray:    color.FgHiBlack,
	ColorCyan:    color.FgCyan,
	ColorGreen:   color.FgGreen,
	ColorYellow:  color.FgYellow,
	ColorRed:     color.FgRed,
}

// Console is the human-facing, line-oriented output: banner, listen URLs,
// prompts and one line per served request. Lines from concurrent handlers
// never interleave.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	colors map[ColorHint]*color.Color
}

// NewConsole writes to out. Colour is disabled automatically when out is not
// a terminal or NO_COLOR is set.
func NewConsole(out io.Writer) *Console {
	c := &Console{out: out, colors: make(map[ColorHint]*color.Color, len(hintAttrs))}
	for hint, attr := range hintAttrs {
		c.colors[hint] = color.New(attr)
	}
	return c
}

// Log writes msg as one line.
func (c *Console) Log(msg string, hint ColorHint) {
	if c == nil {
		return
	}
	col, ok := c.colors[hint]
	if !ok {
		col = c.colors[ColorDefault]
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	col.Fprintln(c.out, msg)
}

// Logf formats and writes one line.
func (c *Console) Logf(hint ColorHint, format string, args ...interface{}) {
	c.Log(fmt.Sprintf(format, args...), hint)
}

const banner = ` _____ _           _     _ _ _     _   _____
|   __|_|_____ ___| |___| | | |___| |_|   __|___ ___ _ _ ___ ___
|__   | |     | . | | -_| | | | -_| . |__   | -_|  _| | | -_|  _|
|_____|_|_|_|_|  _|_|___|_____|___|___|_____|___|_|  \_/|___|_|
              |_|`

// PrintBanner writes the startup banner.
func (c *Console) PrintBanner() {
	c.Log(banner, ColorCyan)
}
