package scratch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bayhackplis1/Tiktok-Downloader-V4/pkg/logger"
	"github.com/google/uuid"
)

var log = logger.Get("Scratch")

// Store hands out unique paths inside the scratch directory and owns
// removal of the artifacts written there. Every extractor output goes
// through a Store so that nothing is ever written to a guessable or
// colliding path.
type Store struct {
	directory string
}

// NewStore validates the directory provided, creating it if it's
// missing. If the path points to an existing FILE, an error is
// returned.
func NewStore(directory string) (*Store, error) {
	if info, err := os.Stat(directory); err == nil {
		if !info.IsDir() {
			return nil, fmt.Errorf("scratch path '%s' is not a directory", directory)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(directory, os.ModeDir|os.ModePerm); err != nil {
			return nil, fmt.Errorf("scratch path '%s' could not be created: %w", directory, err)
		}
	} else {
		return nil, fmt.Errorf("scratch path '%s' could not be accessed: %w", directory, err)
	}

	return &Store{directory: directory}, nil
}

func (store *Store) Directory() string { return store.directory }

// Allocate returns a fresh path for an artifact with the extension
// provided. The file is not created; uniqueness comes from the random
// identifier in the name, so concurrent allocations never collide.
func (store *Store) Allocate(extension string) string {
	return filepath.Join(store.directory, fmt.Sprintf("%s.%s", uuid.New(), extension))
}

// Remove deletes the artifact at path. An already-gone artifact is not
// an error; anything else is logged and swallowed as the janitor will
// retry later.
func (store *Store) Remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Emit(logger.WARNING, "Failed to remove artifact %s: %v\n", path, err)
	}
}

// OpenRemoveOnClose opens the artifact at path for reading, returning
// its size alongside. The returned reader removes the file from disk
// when closed, so the artifact lives exactly as long as the stream
// consuming it.
func (store *Store) OpenRemoveOnClose(path string) (io.ReadCloser, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		store.Remove(path)
		return nil, 0, err
	}

	return &removeOnCloseReader{file: file, path: path}, info.Size(), nil
}

type removeOnCloseReader struct {
	file *os.File
	path string
}

func (reader *removeOnCloseReader) Read(p []byte) (int, error) {
	return reader.file.Read(p)
}

func (reader *removeOnCloseReader) Close() error {
	err := reader.file.Close()
	if removeErr := os.Remove(reader.path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
		log.Emit(logger.WARNING, "Failed to remove streamed artifact %s: %v\n", reader.path, removeErr)
	}

	return err
}
