package io

/*
portclean — trims domain:port lists down to the ports that matter
Copyright (C) 2025  Pepijn van der Stap <rxtls@vanderstap.info>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultBufferSize is the default buffer size for disk I/O
	DefaultBufferSize = 256 * 1024 // 256KB

	// DefaultFileMode is used when the target file does not exist yet
	DefaultFileMode os.FileMode = 0644

	// tempSuffix marks in-flight replacement files next to their target
	tempSuffix = ".tmp"
)

var (
	// ErrFileClosed is returned when writing to a committed or aborted file
	ErrFileClosed = errors.New("atomic file already committed or aborted")

	// ErrDirSync is returned by Commit when the target was replaced but the
	// parent directory could not be synced. The new content is in place; only
	// its durability across a crash is in doubt.
	ErrDirSync = errors.New("directory sync failed after rename")
)

// syncDir is swapped out in tests to simulate a failing directory sync.
var syncDir = fsyncDir

// AtomicFileOptions configures an AtomicFile
type AtomicFileOptions struct {
	BufferSize int
	// Mode is applied to the temp file before it replaces the target.
	// Zero keeps the mode of the existing target, or DefaultFileMode.
	Mode os.FileMode
}

// DefaultAtomicFileOptions returns the default options for AtomicFile
func DefaultAtomicFileOptions() *AtomicFileOptions {
	return &AtomicFileOptions{
		BufferSize: DefaultBufferSize,
	}
}

// AtomicFile buffers writes into a hidden temp file that sits next to the
// target, and only replaces the target in Commit. Readers of the target see
// either the old content or the complete new content, never a partial file.
//
// AtomicFile is not safe for concurrent use.
type AtomicFile struct {
	file      *os.File
	bufWriter *bufio.Writer
	tempPath  string
	finalPath string
	mode      os.FileMode
	written   int64
	done      bool
}

// Create opens a temp file in the same directory as path. The directory must
// already exist; a rename across filesystems would not be atomic.
func Create(path string, options *AtomicFileOptions) (*AtomicFile, error) {
	if options == nil {
		options = DefaultAtomicFileOptions()
	}
	bufferSize := options.BufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	mode := options.Mode
	if mode == 0 {
		mode = DefaultFileMode
		if fi, err := os.Stat(path); err == nil {
			mode = fi.Mode().Perm()
		}
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	file, err := os.CreateTemp(dir, "."+base+".*"+tempSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}

	return &AtomicFile{
		file:      file,
		bufWriter: bufio.NewWriterSize(file, bufferSize),
		tempPath:  file.Name(),
		finalPath: path,
		mode:      mode,
	}, nil
}

// Write writes data to the buffer
func (af *AtomicFile) Write(data []byte) (int, error) {
	if af.done {
		return 0, ErrFileClosed
	}
	n, err := af.bufWriter.Write(data)
	af.written += int64(n)
	if err != nil {
		return n, fmt.Errorf("failed to write to %s: %w", af.tempPath, err)
	}
	return n, nil
}

// WriteString writes s to the buffer
func (af *AtomicFile) WriteString(s string) (int, error) {
	if af.done {
		return 0, ErrFileClosed
	}
	n, err := af.bufWriter.WriteString(s)
	af.written += int64(n)
	if err != nil {
		return n, fmt.Errorf("failed to write to %s: %w", af.tempPath, err)
	}
	return n, nil
}

// Commit flushes the buffer, syncs the temp file to disk and renames it over
// the target. If any step up to the rename fails the temp file is removed and
// the target is left as it was. An error wrapping ErrDirSync means the rename
// succeeded.
func (af *AtomicFile) Commit() error {
	if af.done {
		return ErrFileClosed
	}
	af.done = true

	if err := af.finish(); err != nil {
		os.Remove(af.tempPath)
		return err
	}

	if err := os.Rename(af.tempPath, af.finalPath); err != nil {
		os.Remove(af.tempPath)
		return fmt.Errorf("failed to rename %s to %s: %w", af.tempPath, af.finalPath, err)
	}

	// The target is already replaced here, so the error must stay
	// distinguishable from the failures above.
	if err := syncDir(filepath.Dir(af.finalPath)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDirSync, af.finalPath, err)
	}
	return nil
}

func (af *AtomicFile) finish() error {
	if err := af.bufWriter.Flush(); err != nil {
		af.file.Close()
		return fmt.Errorf("failed to flush %s: %w", af.tempPath, err)
	}
	if err := af.file.Chmod(af.mode); err != nil {
		af.file.Close()
		return fmt.Errorf("failed to chmod %s: %w", af.tempPath, err)
	}
	if err := af.file.Sync(); err != nil {
		af.file.Close()
		return fmt.Errorf("failed to sync %s: %w", af.tempPath, err)
	}
	if err := af.file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", af.tempPath, err)
	}
	return nil
}

// Abort discards the temp file. It is a no-op after Commit or a previous
// Abort, so it can be deferred unconditionally.
func (af *AtomicFile) Abort() error {
	if af.done {
		return nil
	}
	af.done = true
	af.file.Close()
	if err := os.Remove(af.tempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", af.tempPath, err)
	}
	return nil
}

// BytesWritten returns the number of bytes accepted by Write so far.
func (af *AtomicFile) BytesWritten() int64 {
	return af.written
}

// Name returns the path of the file being replaced.
func (af *AtomicFile) Name() string {
	return af.finalPath
}
