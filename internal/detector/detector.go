// Package detector handles frontend detection.
package detector

import (
	"os"
	"runtime"
	"strings"

	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// environment abstracts the process environment that the detection is based on.
type environment struct {
	goos       string
	getenv     func(key string) string
	isTerminal func(fd int) bool
	stdin      int
	stdout     int
}

// Detector handles frontend detection from options and the process environment.
type Detector struct {
	logger *log.Logger
	env    environment
}

// New creates a new frontend detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
		env: environment{
			goos:       runtime.GOOS,
			getenv:     os.Getenv,
			isTerminal: term.IsTerminal,
			stdin:      int(os.Stdin.Fd()),
			stdout:     int(os.Stdout.Fd()),
		},
	}
}

// Detect determines the frontend from options or the process environment.
// It first checks if a frontend is explicitly specified in options, otherwise
// a graphical session selects SDL, an interactive terminal selects the
// terminal frontend and anything else runs headless.
func (d *Detector) Detect(opts options.Program) string {
	frontend := strings.ToLower(opts.Frontend)
	if frontend == "" {
		frontend = d.detectFromEnvironment()
		d.logger.Debug("Auto-detected frontend",
			log.String("frontend", frontend),
			log.String("os", d.env.goos))
	}
	return frontend
}

// detectFromEnvironment determines the frontend based on the available output devices.
func (d *Detector) detectFromEnvironment() string {
	switch {
	case d.hasGraphicalSession():
		return options.FrontendSDL
	case d.env.isTerminal(d.env.stdin) && d.env.isTerminal(d.env.stdout):
		return options.FrontendTerminal
	default:
		return options.FrontendHeadless
	}
}

func (d *Detector) hasGraphicalSession() bool {
	switch d.env.goos {
	case "darwin", "windows":
		return true
	default:
		return d.env.getenv("DISPLAY") != "" || d.env.getenv("WAYLAND_DISPLAY") != ""
	}
}
