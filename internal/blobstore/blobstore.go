// Package blobstore implements the Blob Store: a flat directory of
// opaquely named files holding already-encrypted item payloads. The store
// never sees plaintext and never sees item names — it is handed ciphertext
// and a content-addressed path, nothing more.
package blobstore

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ladzaretti/vaultcore/vaulterrors"
)

const shredBufferSize = 4096

// Store manages ciphertext blobs under a single root directory.
type Store struct {
	root   string
	logger zerolog.Logger
}

// Open returns a Store rooted at dir, creating it (and any missing
// parents) if necessary.
func Open(dir string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, vaulterrors.NewStorageError(err)
	}

	return &Store{root: dir, logger: logger}, nil
}

// NewPath generates a fresh, unpredictable blob filename. It does not
// create the file; callers pass the returned path to Write.
func (s *Store) NewPath() string {
	return uuid.NewString()
}

func (s *Store) resolve(path string) (string, error) {
	if len(path) == 0 || filepath.Base(path) != path {
		return "", vaulterrors.NewInvalidInputError("blob path must be a bare filename")
	}

	return filepath.Join(s.root, path), nil
}

// Write stores ciphertext under path, replacing any existing content.
func (s *Store) Write(path string, ciphertext []byte) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.WriteFile(full, ciphertext, 0o600); err != nil {
		return vaulterrors.NewStorageError(err)
	}

	return nil
}

// Read returns the raw ciphertext stored under path.
func (s *Store) Read(path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, vaulterrors.NewItemNotFoundError(path)
		}

		return nil, vaulterrors.NewStorageError(err)
	}

	return data, nil
}

// Shred overwrites the blob at path with three passes (zeros, ones, then
// random bytes), flushing each pass to disk before moving to the next, and
// finally unlinks it. Shred always attempts the unlink even when a pass
// fails, logging the failure rather than aborting: a half-overwritten file
// that still gets deleted is strictly better than one left untouched.
func (s *Store) Shred(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := shredFile(full, s.logger); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("blob shred: overwrite pass failed, proceeding to unlink")
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return vaulterrors.NewStorageError(err)
	}

	return nil
}

// ShredAll shreds every path in paths, collecting (not aborting on) the
// first error so that one locked or already-missing file does not prevent
// the rest from being shredded.
func (s *Store) ShredAll(ctx context.Context, paths []string) error {
	var firstErr error

	for _, p := range paths {
		if err := s.Shred(ctx, p); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func shredFile(path string, logger zerolog.Logger) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	size := info.Size()

	passes := []func(io.Writer, int64) error{
		fixedBytePass(0x00),
		fixedBytePass(0xFF),
		randomBytePass,
	}

	for i, pass := range passes {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("blobstore: shred pass %d seek: %w", i+1, err)
		}

		if err := pass(f, size); err != nil {
			logger.Warn().Err(err).Int("pass", i+1).Msg("blob shred: write pass failed")
			continue
		}

		if err := f.Sync(); err != nil {
			logger.Warn().Err(err).Int("pass", i+1).Msg("blob shred: sync failed")
		}
	}

	return nil
}

func fixedBytePass(b byte) func(io.Writer, int64) error {
	return func(w io.Writer, size int64) error {
		buf := make([]byte, shredBufferSize)
		for i := range buf {
			buf[i] = b
		}

		return writeN(w, buf, size)
	}
}

func randomBytePass(w io.Writer, size int64) error {
	buf := make([]byte, shredBufferSize)

	var written int64
	for written < size {
		n := int64(len(buf))
		if remaining := size - written; remaining < n {
			n = remaining
		}

		if _, err := rand.Read(buf[:n]); err != nil {
			return err
		}

		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}

		written += n
	}

	return nil
}

func writeN(w io.Writer, buf []byte, size int64) error {
	var written int64
	for written < size {
		n := int64(len(buf))
		if remaining := size - written; remaining < n {
			n = remaining
		}

		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}

		written += n
	}

	return nil
}
