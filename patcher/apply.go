package patcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// PatchPrefix marks the archive entries that belong to the installation.
// Everything else in the archive is ignored. Matching is case-insensitive.
const PatchPrefix = "patch/"

// Result lists what Apply wrote.
type Result struct {
	// Files holds the written paths relative to the target root, in archive
	// order, with forward slashes.
	Files []string
	Bytes int64
}

// Apply extracts every patch entry of archive into target, overwriting files
// that already exist. It stops at the first failure; entries written before
// that stay in place.
func Apply(ctx context.Context, archive *Archive, target Target) (Result, error) {
	var result Result
	if target.root == "" {
		return result, &InvalidTargetError{}
	}

	zr, err := openArchive(archive)
	if err != nil {
		return result, err
	}

	for _, file := range zr.File {
		if err := ctx.Err(); err != nil {
			return result, &ArchiveError{Entry: file.Name, Err: err}
		}

		rel, ok := selectEntry(file.Name)
		if !ok {
			slog.Debug("Skipping archive entry", "entry", file.Name)
			continue
		}
		dest, err := destination(target.root, file.Name, rel)
		if err != nil {
			return result, err
		}

		n, err := extract(file, dest)
		if err != nil {
			return result, err
		}
		result.Files = append(result.Files, rel)
		result.Bytes += n
		slog.Debug("Patched file", "entry", file.Name, "path", dest, "bytes", n)
	}

	slog.Info("Patch applied", "root", target.root, "files", len(result.Files), "bytes", result.Bytes)
	return result, nil
}

// Plan returns the relative paths Apply would write, without touching disk.
// It fails on the same unsafe entries Apply would.
func Plan(archive *Archive) ([]string, error) {
	zr, err := openArchive(archive)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, file := range zr.File {
		rel, ok := selectEntry(file.Name)
		if !ok {
			continue
		}
		if _, err := sanitize(file.Name, rel); err != nil {
			return nil, err
		}
		files = append(files, rel)
	}
	return files, nil
}

func openArchive(archive *Archive) (*zip.Reader, error) {
	if archive == nil {
		return nil, &ArchiveError{Err: errors.New("no archive")}
	}
	zr, err := zip.NewReader(archive, archive.Size())
	if err != nil {
		return nil, &ArchiveError{Err: err}
	}
	return zr, nil
}

// selectEntry returns the entry path below PatchPrefix, or false for entries
// that are not extracted: blank names, directories and anything outside the
// prefix.
func selectEntry(name string) (string, bool) {
	if strings.TrimSpace(name) == "" || strings.HasSuffix(name, "/") {
		return "", false
	}
	if len(name) < len(PatchPrefix) || !strings.EqualFold(name[:len(PatchPrefix)], PatchPrefix) {
		return "", false
	}
	return name[len(PatchPrefix):], true
}

// sanitize turns rel into a local OS path, rejecting parent segments with
// either separator as well as absolute and volume-qualified paths.
func sanitize(entry, rel string) (string, error) {
	segments := strings.FieldsFunc(rel, func(r rune) bool { return r == '/' || r == '\\' })
	for _, seg := range segments {
		if seg == ".." {
			return "", &PathSafetyError{Entry: entry}
		}
	}

	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", &PathSafetyError{Entry: entry}
	}
	return local, nil
}

func destination(root, entry, rel string) (string, error) {
	local, err := sanitize(entry, rel)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(root, local)
	within, err := filepath.Rel(root, dest)
	if err != nil || within == "." || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", &PathSafetyError{Entry: entry}
	}
	return dest, nil
}

func extract(file *zip.File, dest string) (int64, error) {
	rc, err := file.Open()
	if err != nil {
		return 0, &ArchiveError{Entry: file.Name, Err: err}
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, &FileWriteError{Entry: file.Name, Path: dest, Err: err}
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, &FileWriteError{Entry: file.Name, Path: dest, Err: err}
	}

	w := &recordingWriter{w: out}
	n, err := io.Copy(w, rc)
	closeErr := out.Close()
	if err != nil {
		if w.err != nil {
			return n, &FileWriteError{Entry: file.Name, Path: dest, Err: err}
		}
		return n, &ArchiveError{Entry: file.Name, Err: err}
	}
	if closeErr != nil {
		return n, &FileWriteError{Entry: file.Name, Path: dest, Err: closeErr}
	}
	return n, nil
}

// recordingWriter remembers write failures so a failed copy can be blamed on
// the destination rather than the decompressor.
type recordingWriter struct {
	w   io.Writer
	err error
}

func (r *recordingWriter) Write(p []byte) (int, error) {
	n, err := r.w.Write(p)
	if err != nil {
		r.err = err
	}
	return n, err
}
