package patcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const (
	// ChunkSize is the read size of the download loop and, when the length
	// is unknown, the byte interval between progress updates.
	ChunkSize = 64 * 1024

	// UnknownLength is the Total of a download whose server sent no length.
	UnknownLength = -1

	// Indeterminate is the Percent of a download with an unknown length.
	Indeterminate = -1
)

// maxPrealloc caps how much the buffer grows up front on the word of a
// Content-Length header.
const maxPrealloc = 512 * 1024 * 1024

// Progress is one download progress update.
type Progress struct {
	Transferred int64
	Total       int64
	Percent     int
}

// ProgressFunc receives progress updates on the fetching goroutine.
type ProgressFunc func(Progress)

// Archive is a fully downloaded patch archive held in memory.
type Archive struct {
	r *bytes.Reader
}

// NewArchive wraps data, positioned at its start.
func NewArchive(data []byte) *Archive {
	return &Archive{r: bytes.NewReader(data)}
}

func (a *Archive) Read(p []byte) (int, error) { return a.r.Read(p) }

func (a *Archive) ReadAt(p []byte, off int64) (int, error) { return a.r.ReadAt(p, off) }

func (a *Archive) Seek(offset int64, whence int) (int64, error) { return a.r.Seek(offset, whence) }

// Size is the total length of the archive in bytes.
func (a *Archive) Size() int64 { return a.r.Size() }

// Fetcher downloads patch archives into memory. The zero value fetches over
// HTTP with HTTPClient and has no S3 mirror.
type Fetcher struct {
	Client *http.Client
	S3     *S3Client
}

// Fetch downloads rawURL in full, calling onProgress (which may be nil) as
// the transfer advances. Nothing is returned unless the whole body arrived.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, onProgress ProgressFunc) (*Archive, error) {
	slog.Debug("Requesting archive", "url", rawURL)

	body, total, err := f.open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	slog.Debug("Headers received", "url", rawURL, "length", total)
	return receive(ctx, rawURL, body, total, onProgress)
}

func (f *Fetcher) open(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, 0, &TransferError{URL: rawURL, Err: err}
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		client := f.Client
		if client == nil {
			client = HTTPClient
		}
		return openHTTP(ctx, client, rawURL)
	case "s3":
		if f.S3 == nil {
			return nil, 0, &TransferError{URL: rawURL, Err: errors.New("no S3 mirror configured")}
		}
		bucket, key, err := parseS3URL(u)
		if err != nil {
			return nil, 0, &TransferError{URL: rawURL, Err: err}
		}
		return f.S3.Open(ctx, bucket, key)
	default:
		return nil, 0, &TransferError{URL: rawURL, Err: fmt.Errorf("unsupported url scheme %q", u.Scheme)}
	}
}

func receive(ctx context.Context, rawURL string, body io.Reader, total int64, onProgress ProgressFunc) (*Archive, error) {
	var buf bytes.Buffer
	if total > 0 && total <= maxPrealloc {
		buf.Grow(int(total))
	}

	tracker := progressTracker{total: total, lastPercent: -1, notify: onProgress}
	chunk := make([]byte, ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, &TransferError{URL: rawURL, Err: err}
		}
		n, err := body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			tracker.advance(int64(n))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &TransferError{URL: rawURL, Err: err}
		}
	}

	if total != UnknownLength && int64(buf.Len()) != total {
		return nil, &TransferError{
			URL: rawURL,
			Err: fmt.Errorf("%w: got %d of %d bytes", ErrLengthMismatch, buf.Len(), total),
		}
	}

	slog.Debug("Archive downloaded", "url", rawURL, "bytes", tracker.transferred)
	return NewArchive(buf.Bytes()), nil
}

// progressTracker is the per-download state of the read loop.
type progressTracker struct {
	total        int64
	transferred  int64
	lastPercent  int
	lastReported int64
	notify       ProgressFunc
}

func (t *progressTracker) advance(n int64) {
	t.transferred += n
	if t.notify == nil {
		return
	}

	if t.total > 0 {
		percent := int(t.transferred * 100 / t.total)
		if percent > 100 {
			percent = 100
		}
		if percent == t.lastPercent {
			return
		}
		t.lastPercent = percent
		t.notify(Progress{Transferred: t.transferred, Total: t.total, Percent: percent})
		return
	}

	if t.transferred-t.lastReported < ChunkSize {
		return
	}
	t.lastReported = t.transferred
	t.notify(Progress{Transferred: t.transferred, Total: t.total, Percent: Indeterminate})
}
