// Package browser opens tracker pages in the desktop browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Commander is an interface for executing commands (for testing)
type Commander interface {
	Start(name string, args ...string) error
}

// RealCommander executes actual commands
type RealCommander struct{}

// Start executes a command and starts it
func (RealCommander) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Launcher opens http(s) URLs with the platform's URL handler
type Launcher struct {
	commander Commander
	goos      string
}

// NewLauncher creates a Launcher for the running platform
func NewLauncher() *Launcher {
	return &Launcher{commander: RealCommander{}, goos: runtime.GOOS}
}

// NewLauncherFor creates a Launcher with an explicit commander and OS (for testing)
func NewLauncherFor(commander Commander, goos string) *Launcher {
	return &Launcher{commander: commander, goos: goos}
}

// Open validates rawURL and hands it to the browser
func (l *Launcher) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("not an http(s) URL: %q", rawURL)
	}

	name, args, err := command(l.goos, u.String())
	if err != nil {
		return err
	}
	return l.commander.Start(name, args...)
}

// command returns the URL handler invocation for goos
func command(goos, target string) (string, []string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{target}, nil
	case "darwin":
		return "open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
