package adapter

import (
	"io"
	"os"
	"path/filepath"

	m "github.com/ryanslynch/psrsb/internal/model"
)

// BlockStore writes scheduling blocks to disk.
type BlockStore interface {
	// Write saves one block under dir and returns the path written. The
	// file name is derived from the block label.
	Write(dir m.Path, block m.Block) (m.Path, error)

	// WriteTo streams the blocks to a single writer in order, separated
	// by a blank line.
	WriteTo(w io.Writer, blocks []m.Block) error
}

type localBlockStore struct{}

// NewBlockStore constructs a BlockStore writing plain files.
func NewBlockStore() BlockStore {
	return &localBlockStore{}
}

func (s *localBlockStore) Write(dir m.Path, block m.Block) (m.Path, error) {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return "", err
	}

	text := block.Text
	if text == "" {
		text = block.Generated
	}

	target := filepath.Join(string(dir), blockSlug(block.Label)+".py")

	// Write through a temp file so a failed write never truncates an
	// existing block.
	tmp, err := os.CreateTemp(string(dir), ".psrsb-*")
	if err != nil {
		return "", err
	}

	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return "", err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}

	return m.Path(target), nil
}

func (s *localBlockStore) WriteTo(w io.Writer, blocks []m.Block) error {
	for i, block := range blocks {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}

		text := block.Text
		if text == "" {
			text = block.Generated
		}

		if _, err := io.WriteString(w, text); err != nil {
			return err
		}
	}

	return nil
}

// blockSlug turns a block label into a file name stem by replacing every
// non-alphanumeric character with an underscore.
func blockSlug(label string) string {
	out := []rune(label)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			out[i] = '_'
		}
	}

	return string(out)
}
