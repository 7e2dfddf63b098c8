package terminal

import (
	"fmt"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// rawMode holds the terminal configuration to restore.
type rawMode struct {
	fd       uintptr
	original unix.Termios
}

// enableRawMode disables line buffering and echo so that every key press is
// delivered immediately.
func enableRawMode(fd uintptr) (*rawMode, error) {
	r := &rawMode{fd: fd}
	if err := termios.Tcgetattr(fd, &r.original); err != nil {
		return nil, fmt.Errorf("getting terminal attributes: %w", err)
	}

	raw := r.original
	raw.Lflag &^= unix.ICANON | unix.ECHO
	if err := termios.Tcsetattr(fd, termios.TCSANOW, &raw); err != nil {
		return nil, fmt.Errorf("setting terminal attributes: %w", err)
	}
	return r, nil
}

func (r *rawMode) restore() error {
	if err := termios.Tcsetattr(r.fd, termios.TCSANOW, &r.original); err != nil {
		return fmt.Errorf("setting terminal attributes: %w", err)
	}
	return nil
}
