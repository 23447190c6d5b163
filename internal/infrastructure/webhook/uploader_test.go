package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestUploadSendsMultipartForm(t *testing.T) {
	t.Parallel()

	type received struct {
		secret   string
		filename string
		content  string
	}
	var got received

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		got.secret = r.FormValue("secret")
		got.filename = r.FormValue("filename")
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		body, _ := io.ReadAll(file)
		got.content = string(body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := writeArtifact(t, dir, "sec_filings_snapshot.json", `[{"form":"8-K"}]`)

	u := New(srv.URL, "hunter2", []string{"sec_filings_snapshot.json"}, time.Second, nil)
	uploaded := u.Upload(context.Background(), []string{path})

	if !reflect.DeepEqual(uploaded, []string{"sec_filings_snapshot.json"}) {
		t.Fatalf("uploaded = %v", uploaded)
	}
	if got.secret != "hunter2" || got.filename != "sec_filings_snapshot.json" {
		t.Fatalf("form fields = %+v", got)
	}
	if got.content != `[{"form":"8-K"}]` {
		t.Fatalf("content = %q", got.content)
	}
}

func TestUploadSkipsDisallowedFiles(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	dir := t.TempDir()
	allowed := writeArtifact(t, dir, "sec_debug_stats.json", "{}")
	secret := writeArtifact(t, dir, "credentials.txt", "nope")

	u := New(srv.URL, "", []string{"sec_debug_stats.json"}, time.Second, nil)
	uploaded := u.Upload(context.Background(), []string{allowed, secret})

	if !reflect.DeepEqual(uploaded, []string{"sec_debug_stats.json"}) {
		t.Fatalf("uploaded = %v", uploaded)
	}
	if calls != 1 {
		t.Fatalf("endpoint called %d times, want 1", calls)
	}
}

func TestUploadContinuesPastFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		if r.FormValue("filename") == "sec_filings_raw.json" {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	failing := writeArtifact(t, dir, "sec_filings_raw.json", "[]")
	ok := writeArtifact(t, dir, "sec_debug_stats.json", "{}")

	u := New(srv.URL, "", []string{"sec_filings_raw.json", "sec_debug_stats.json"}, time.Second, nil)
	uploaded := u.Upload(context.Background(), []string{failing, ok})

	if !reflect.DeepEqual(uploaded, []string{"sec_debug_stats.json"}) {
		t.Fatalf("uploaded = %v", uploaded)
	}
}

func TestNewWithoutURLDisablesUploads(t *testing.T) {
	t.Parallel()

	if u := New("", "secret", nil, time.Second, nil); u != nil {
		t.Fatal("expected nil uploader without a URL")
	}
}
