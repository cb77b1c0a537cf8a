package patcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
)

// fakeMirror serves objects at path-style /bucket/key locations.
func fakeMirror(t *testing.T, objects map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := objects[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Header().Set("Content-Type", "application/zip")
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchFromS3Mirror(t *testing.T) {
	data := payload(2*ChunkSize + 7)
	srv := fakeMirror(t, map[string][]byte{"/mirror/files/pre_patch.zip": data})

	f := Fetcher{S3: NewS3Client(S3Config{Endpoint: srv.URL, Region: "us-east-1"})}
	var last Progress
	archive, err := f.Fetch(context.Background(), "s3://mirror/files/pre_patch.zip", func(p Progress) { last = p })
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	got, err := io.ReadAll(archive)
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("archive content differs from mirrored object")
	}
	if last.Percent != 100 || last.Transferred != int64(len(data)) {
		t.Errorf("last update = %+v, want full transfer at 100%%", last)
	}
}

func TestFetchFromS3MirrorMissingObject(t *testing.T) {
	srv := fakeMirror(t, nil)

	f := Fetcher{S3: NewS3Client(S3Config{Endpoint: srv.URL, Region: "us-east-1"})}
	_, err := f.Fetch(context.Background(), "s3://mirror/missing.zip", nil)
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Fetch error = %v, want HTTPStatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", statusErr.StatusCode, http.StatusNotFound)
	}
}

func TestFetchFromS3MirrorDoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	f := Fetcher{S3: NewS3Client(S3Config{Endpoint: srv.URL, Region: "us-east-1"})}
	_, err := f.Fetch(context.Background(), "s3://mirror/pre_patch.zip", nil)
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("Fetch error = %v, want HTTPStatusError 503", err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("mirror got %d requests, want 1", n)
	}
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		raw     string
		bucket  string
		key     string
		wantErr bool
	}{
		{raw: "s3://mirror/files/pre_patch.zip", bucket: "mirror", key: "files/pre_patch.zip"},
		{raw: "s3://mirror/", wantErr: true},
		{raw: "s3:///key.zip", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			if err != nil {
				t.Fatalf("url.Parse: %v", err)
			}
			bucket, key, err := parseS3URL(u)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseS3URL(%q) succeeded, want error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseS3URL(%q): %v", tt.raw, err)
			}
			if bucket != tt.bucket || key != tt.key {
				t.Errorf("parseS3URL(%q) = %q, %q; want %q, %q", tt.raw, bucket, key, tt.bucket, tt.key)
			}
		})
	}
}
