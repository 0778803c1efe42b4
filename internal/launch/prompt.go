package launch

import (
	"bufio"
	"strings"

	"example.com/simplewebserver/internal/logger"
)

// LinePrompter asks on the console and reads one answer line from in.
// Only "y" (any case) confirms.
type LinePrompter struct {
	In      *bufio.Reader
	Console *logger.Console
}

func (p LinePrompter) Confirm(question string) bool {
	p.Console.Log(question, logger.ColorYellow)
	line, err := p.In.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}
