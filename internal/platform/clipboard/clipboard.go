// Package clipboard delivers rendered notes to the system clipboard, or to a
// terminal prompt when no clipboard is reachable.
package clipboard

import (
	"errors"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
)

// FallbackPrompt precedes the text when it has to be copied by hand.
const FallbackPrompt = "Copy SmartPhrase text:"

var ErrUnsupported = errors.New("clipboard not available")

// Copier copies text with write and falls back to printing it on out.
type Copier struct {
	write       func(string) error
	unsupported bool
	out         io.Writer
	logger      zerolog.Logger
}

type Option func(*Copier)

// WithWriter replaces the system clipboard, mainly for tests.
func WithWriter(write func(string) error) Option {
	return func(c *Copier) {
		c.write = write
		c.unsupported = false
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Copier) { c.logger = logger }
}

func New(out io.Writer, opts ...Option) *Copier {
	c := &Copier{
		write:       clipboard.WriteAll,
		unsupported: clipboard.Unsupported,
		out:         out,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Copy reports whether text reached the clipboard. When it did not, the text
// is printed after FallbackPrompt and the returned error is nil unless the
// fallback write failed too.
func (c *Copier) Copy(text string) (bool, error) {
	err := ErrUnsupported
	if !c.unsupported {
		err = c.write(text)
	}
	if err == nil {
		return true, nil
	}

	c.logger.Warn().Err(err).Msg("clipboard write failed, printing text instead")
	if _, werr := fmt.Fprintf(c.out, "%s\n%s\n", FallbackPrompt, text); werr != nil {
		return false, fmt.Errorf("print fallback: %w", werr)
	}
	return false, nil
}
