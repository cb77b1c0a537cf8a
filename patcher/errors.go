package patcher

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is wrapped by a TransferError when the body length
// disagrees with the Content-Length the server announced.
var ErrLengthMismatch = errors.New("body length does not match content length")

// HTTPStatusError indicates the server answered with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
}

// TransferError indicates the body could not be read in full.
type TransferError struct {
	URL string
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transferring %s: %v", e.URL, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// InvalidTargetError indicates a path that is not a Hearthstone installation.
type InvalidTargetError struct {
	Path string
}

func (e *InvalidTargetError) Error() string {
	if e.Path == "" {
		return "no Hearthstone installation directory found"
	}
	return fmt.Sprintf("%q is not a Hearthstone installation directory", e.Path)
}

// ArchiveError indicates the container or one of its entries is unreadable.
// Entry is empty when the container itself could not be opened.
type ArchiveError struct {
	Entry string
	Err   error
}

func (e *ArchiveError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("opening archive: %v", e.Err)
	}
	return fmt.Sprintf("reading archive entry %s: %v", e.Entry, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// PathSafetyError indicates an entry whose path would land outside the target.
type PathSafetyError struct {
	Entry string
}

func (e *PathSafetyError) Error() string {
	return fmt.Sprintf("archive entry %s escapes the installation directory", e.Entry)
}

// FileWriteError indicates a destination file could not be created or written,
// typically because the game is running and holds it open.
type FileWriteError struct {
	Entry string
	Path  string
	Err   error
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("writing %s (from %s): %v", e.Path, e.Entry, e.Err)
}

func (e *FileWriteError) Unwrap() error { return e.Err }
