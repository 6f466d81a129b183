package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/contesttracker/tracker/internal/logger"
)

// opener opens a URL in a browser
type opener interface {
	Open(rawURL string) error
}

// shortcuts performs the action bound to each key
type shortcuts struct {
	out      io.Writer
	log      *logger.SlogLogger
	launcher opener
	url      string
}

// handle runs the action for key and reports whether the server should quit
func (s *shortcuts) handle(key byte) bool {
	switch strings.ToLower(string(key)) {
	case "o":
		fmt.Fprintf(s.out, "%sOpening tracker in browser...%s\n", cyan, reset)
		if err := s.launcher.Open(s.url); err != nil {
			fmt.Fprintf(s.out, "%sError opening browser: %v%s\n", red, err, reset)
		}
	case "h":
		if s.log.IsHTTPLoggingEnabled() {
			s.log.DisableHTTPLogging()
			fmt.Fprintf(s.out, "%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			s.log.EnableHTTPLogging()
			fmt.Fprintf(s.out, "%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		next := logger.NextLevel(s.log.GetLevel())
		s.log.SetLevel(next)
		fmt.Fprintf(s.out, "%sLog level: %s%s%s\n", green, yellow, strings.ToLower(next.String()), reset)
	case "?":
		printKeyboardHelp(s.out)
	case "q", "\x03": // q or Ctrl+C
		return true
	}
	return false
}

// listenForKeyboard puts in into raw mode and dispatches single key presses
// until a quit key, closing quit. The returned func restores the terminal.
func listenForKeyboard(in *os.File, s *shortcuts, quit chan<- struct{}) (func(), error) {
	fd := int(in.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	restore := func() { term.Restore(fd, oldState) }

	go readKeys(in, s, quit)
	return restore, nil
}

func readKeys(in io.Reader, s *shortcuts, quit chan<- struct{}) {
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if s.handle(buf[0]) {
			close(quit)
			return
		}
	}
}

// crlfWriter turns \n into \r\n for a terminal in raw mode
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
