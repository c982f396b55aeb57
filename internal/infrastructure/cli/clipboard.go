package cli

import (
	"errors"

	"github.com/atotto/clipboard"

	"github.com/doeshing/gitflow-ai/internal/ports"
)

// Clipboard implements ports.Clipboard on top of the system clipboard tools
// (pbcopy, xclip, xsel, wl-copy or the Windows API).
type Clipboard struct{}

// NewClipboard builds the clipboard helper.
func NewClipboard() *Clipboard {
	return &Clipboard{}
}

func (c *Clipboard) Enabled() bool {
	return !clipboard.Unsupported
}

// Copy copies text to the system clipboard.
func (c *Clipboard) Copy(text string) error {
	if !c.Enabled() {
		return errors.New("no clipboard utility found")
	}
	return clipboard.WriteAll(text)
}

var _ ports.Clipboard = (*Clipboard)(nil)
