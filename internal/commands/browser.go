package commands

import (
	"fmt"
	"os/exec"
	"runtime"
)

// browserCommand returns the platform launcher for url.
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default: // linux, freebsd, etc
		return "xdg-open", []string{url}
	}
}

// OpenBrowser opens url in the default browser without waiting for it.
func OpenBrowser(url string) error {
	name, args := browserCommand(runtime.GOOS, url)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch browser with %s: %w", name, err)
	}
	// Reap the launcher.
	go cmd.Wait()
	return nil
}
