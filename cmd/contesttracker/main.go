package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/contesttracker/tracker/internal/app"
	"github.com/contesttracker/tracker/internal/browser"
	"github.com/contesttracker/tracker/internal/config"
	"github.com/contesttracker/tracker/internal/logger"
	"github.com/contesttracker/tracker/web"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

var (
	version = "dev"
)

// showBanner prints the tracker logo and where to reach it
func showBanner(out io.Writer, shareURL, apiURL string, demo bool) {
	border := "══════════════════════════════════════════════════════════════"
	fmt.Fprintf(out, "\n  %s╔%s╗%s\n", cyan, border, reset)
	fmt.Fprintf(out, "  %s║%s  %-60s%s║%s\n", cyan, yellow, "Contest Tracker "+version, cyan, reset)
	fmt.Fprintf(out, "  %s╚%s╝%s\n\n", cyan, border, reset)
	fmt.Fprintf(out, "  %sLAN address:%s %s\n", bold, reset, shareURL)
	if demo {
		fmt.Fprintf(out, "  %sContest API:%s built-in demo backend\n\n", bold, reset)
	} else {
		fmt.Fprintf(out, "  %sContest API:%s %s\n\n", bold, reset, apiURL)
	}
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp(out io.Writer) {
	fmt.Fprintf(out, "\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Fprintf(out, "    %so%s      - Open the tracker in a browser\n", cyan, reset)
	fmt.Fprintf(out, "    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Fprintf(out, "    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Fprintf(out, "    %sq%s      - Quit server\n", cyan, reset)
	fmt.Fprintf(out, "    %s?%s      - Show this help\n\n", cyan, reset)
}

// applyFlags copies explicitly set flags over cfg
func applyFlags(fs *flag.FlagSet, cfg *config.Config, f *flags) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "port":
			cfg.Port = f.port
		case "api":
			cfg.APIBaseURL = f.api
		case "loglevel":
			cfg.LogLevel = f.logLevel
		case "demo":
			cfg.Demo = f.demo
		case "demodb":
			cfg.DemoDB = f.demoDB
		case "timeout":
			cfg.RequestTimeout = f.timeout
		case "open":
			cfg.OpenBrowser = f.open
		case "nokeyboard":
			cfg.NoKeyboard = f.noKeyboard
		}
	})
}

type flags struct {
	envFile     string
	port        int
	api         string
	logLevel    string
	demo        bool
	demoDB      string
	timeout     time.Duration
	open        bool
	noKeyboard  bool
	showVersion bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*flags, error) {
	d := config.Defaults()
	f := &flags{}
	fs.StringVar(&f.envFile, "env", ".env", "Settings file loaded before the environment")
	fs.IntVar(&f.port, "port", d.Port, "HTTP server port")
	fs.StringVar(&f.api, "api", d.APIBaseURL, "Contest API base URL")
	fs.StringVar(&f.logLevel, "loglevel", d.LogLevel, "Log level (debug, info, warn, error)")
	fs.BoolVar(&f.demo, "demo", false, "Serve the built-in demo backend")
	fs.StringVar(&f.demoDB, "demodb", d.DemoDB, "SQLite database for the demo backend")
	fs.DurationVar(&f.timeout, "timeout", 0, "Contest API request timeout (0 waits forever)")
	fs.BoolVar(&f.open, "open", false, "Open the tracker in a browser on startup")
	fs.BoolVar(&f.noKeyboard, "nokeyboard", false, "Disable keyboard shortcuts")
	fs.BoolVar(&f.showVersion, "version", false, "Show version and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Contest Tracker - participants and competitions for the contest day

Usage:
  contesttracker [options]

Options:
  -env string      Settings file loaded before the environment (default ".env")
  -port int        HTTP server port (default 8081)
  -api string      Contest API base URL (default "http://localhost:8080")
  -loglevel str    Log level: debug, info, warn, error (default "info")
  -demo            Serve the built-in demo backend under /api
  -demodb string   SQLite database for the demo backend (default "contesttracker-demo.db")
  -timeout dur     Contest API request timeout, e.g. 10s (default none)
  -open            Open the tracker in a browser on startup
  -nokeyboard      Disable keyboard shortcuts
  -version         Show version and exit
  -help            Show this help message

Every option can also be set as a CONTEST_* environment variable,
e.g. CONTEST_API_URL, CONTEST_PORT, CONTEST_DEMO.

Keyboard Shortcuts (when enabled):
  o                Open the tracker in a browser
  h                Toggle HTTP request logging
  l                Cycle log level (debug → info → warn → error)
  q                Quit server
  ?                Show keyboard help

Examples:
  contesttracker                                # Use the API at localhost:8080
  contesttracker -api http://10.0.0.2:8080      # Use a remote API
  contesttracker -demo -open                    # Try it without a backend

`)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func main() {
	fs := flag.NewFlagSet("contesttracker", flag.ExitOnError)
	f, _ := parseFlags(fs, os.Args[1:])

	if f.showVersion {
		fmt.Printf("contesttracker %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(f.envFile)
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	applyFlags(fs, &cfg, f)
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Raw keyboard mode turns off output processing, so console lines carry their own \r
	interactive := !cfg.NoKeyboard && term.IsTerminal(int(os.Stdin.Fd()))
	var console io.Writer = os.Stdout
	if interactive {
		console = crlfWriter{w: os.Stdout}
	}
	appLog := logger.NewConsole(console, term.IsTerminal(int(os.Stdout.Fd())), cfg.Level())

	a, err := app.New(cfg, appLog, web.GetTemplatesFS(), web.GetStaticFS())
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	showBanner(console, a.ShareURL(), cfg.APIBaseURL, cfg.Demo)

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(fmt.Sprintf(":%d", cfg.Port))
	}()

	// Wait a moment for server to start
	time.Sleep(100 * time.Millisecond)

	localURL := fmt.Sprintf("http://localhost:%d/", cfg.Port)
	launcher := browser.NewLauncher()
	if cfg.OpenBrowser {
		if err := launcher.Open(localURL); err != nil {
			appLog.Warn("Could not open browser", "error", err)
		}
	}

	quit := make(chan struct{})
	restore := func() {}
	if interactive {
		printKeyboardHelp(console)
		kb := &shortcuts{out: console, log: appLog, launcher: launcher, url: localURL}
		if r, err := listenForKeyboard(os.Stdin, kb, quit); err != nil {
			appLog.Warn("Keyboard shortcuts unavailable", "error", err)
		} else {
			restore = r
		}
	} else if cfg.NoKeyboard {
		fmt.Fprintf(console, "\n%sKeyboard shortcuts disabled%s\n\n", yellow, reset)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			appLog.Error("Server failed", "error", err)
			a.Close()
			restore()
			os.Exit(1)
		}
	case <-quit:
	case <-signals:
	}

	fmt.Fprintf(console, "%sShutting down server...%s\n", yellow, reset)
	a.Close()
	restore()
}
