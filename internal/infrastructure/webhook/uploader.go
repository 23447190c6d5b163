// Package webhook uploads run artifacts to an external endpoint as multipart
// form posts. Uploads are strictly best effort: a failed file is logged and
// skipped, never fatal.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"EdgarScanner/internal/ports"
)

// Uploader posts files to a single webhook URL, authenticating with a shared
// secret form field. Only files whose base name appears in the allow-list are
// sent.
type Uploader struct {
	url     string
	secret  string
	allowed map[string]struct{}
	client  *http.Client
	logger  *slog.Logger
}

var _ ports.Uploader = (*Uploader)(nil)

// New returns nil when no URL is configured so callers can nil-guard the
// whole upload step.
func New(url, secret string, allowedFilenames []string, timeout time.Duration, logger *slog.Logger) *Uploader {
	if url == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	allowed := make(map[string]struct{}, len(allowedFilenames))
	for _, name := range allowedFilenames {
		allowed[name] = struct{}{}
	}
	return &Uploader{
		url:     url,
		secret:  secret,
		allowed: allowed,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Upload sends each allowed, existing file and returns the base names that
// were accepted by the endpoint.
func (u *Uploader) Upload(ctx context.Context, paths []string) []string {
	var uploaded []string
	for _, path := range paths {
		name := filepath.Base(path)
		if _, ok := u.allowed[name]; !ok {
			u.debug("skipping file outside allow-list", "file", name)
			continue
		}
		if err := u.send(ctx, path, name); err != nil {
			u.warn("upload failed", "file", name, "error", err)
			continue
		}
		u.info("uploaded", "file", name)
		uploaded = append(uploaded, name)
	}
	return uploaded
}

func (u *Uploader) send(ctx context.Context, path, name string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if u.secret != "" {
		if err := mw.WriteField("secret", u.secret); err != nil {
			return fmt.Errorf("write secret field: %w", err)
		}
	}
	if err := mw.WriteField("filename", name); err != nil {
		return fmt.Errorf("write filename field: %w", err)
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(payload); err != nil {
		return fmt.Errorf("write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, &body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

func (u *Uploader) info(msg string, args ...any) {
	if u.logger != nil {
		u.logger.Info(msg, args...)
	}
}

func (u *Uploader) warn(msg string, args ...any) {
	if u.logger != nil {
		u.logger.Warn(msg, args...)
	}
}

func (u *Uploader) debug(msg string, args ...any) {
	if u.logger != nil {
		u.logger.Debug(msg, args...)
	}
}
