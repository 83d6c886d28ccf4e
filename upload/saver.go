package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/calebsm/dirshare"
)

// Saver writes uploaded files into the served root directory.
type Saver struct {
	root *os.Root
}

// NewSaver creates a Saver writing into root. The root sandboxes all
// writes, so even a filename that slipped past sanitization cannot
// escape the served directory.
func NewSaver(root *os.Root) *Saver {
	return &Saver{root: root}
}

// Save writes each uploaded file to the root under its sanitized
// basename, overwriting any existing file of the same name. Writes go
// through a temp file and rename so a failed upload never leaves a
// partial file behind.
//
// Save halts on the first failure and returns the names already saved
// together with an error naming the offending file: a sanitization
// failure wraps dirshare.ErrUploadParse, a filesystem failure wraps
// dirshare.ErrFileWrite.
func (s *Saver) Save(ctx context.Context, files []dirshare.UploadedFile) ([]string, error) {
	var saved []string

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return saved, err
		}

		name, err := dirshare.SanitizeFilename(f.Filename)
		if err != nil {
			return saved, fmt.Errorf("upload %q: %w", f.Filename, err)
		}

		if err := s.writeFile(name, f.Content); err != nil {
			return saved, err
		}

		saved = append(saved, name)
	}

	return saved, nil
}

func (s *Saver) writeFile(name string, content []byte) error {
	tmp := tmpFileName()
	t, err := s.root.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", dirshare.ErrFileWrite, name, err)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmp); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	if _, err := t.Write(content); err != nil {
		return fmt.Errorf("%w: %s: %v", dirshare.ErrFileWrite, name, err)
	}

	if err := t.Sync(); err != nil {
		return fmt.Errorf("%w: %s: %v", dirshare.ErrFileWrite, name, err)
	}

	if err := s.root.Rename(tmp, name); err != nil {
		return fmt.Errorf("%w: %s: %v", dirshare.ErrFileWrite, name, err)
	}

	success = true
	return nil
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
