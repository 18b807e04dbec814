// Package api talks to the hosted scoreboard that collects match exports.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustline/arena/pkg/core"
)

const (
	healthPath = "/healthcheck"
	uploadPath = "/api/v1/matches/add"

	// maxErrorBody bounds how much of a failed response ends up in the error.
	maxErrorBody = 512
)

// ErrRejected is returned when the scoreboard refuses the api key.
var ErrRejected = errors.New("scoreboard rejected the api key")

// Client uploads match exports to the scoreboard.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
}

// New creates a client. client identifies this build in the User-Agent,
// e.g. "arena/0.0.1".
func New(baseURL, apiKey, client string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		userAgent:  client,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Healthcheck returns nil when the scoreboard answers 200.
func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := c.request(ctx, http.MethodGet, healthPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus("healthcheck", resp)
}

// Upload streams an exported match file with its metadata as a multipart
// form.
func (c *Client) Upload(ctx context.Context, filePath string, meta core.UploadMetadata) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	errCh := make(chan error, 1)
	go func() {
		err := writeForm(form, file, filepath.Base(filePath), c.apiKey, meta)
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
		errCh <- err
	}()

	req, err := c.request(ctx, http.MethodPost, uploadPath, pr)
	if err != nil {
		pr.Close()
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		pr.Close()
		<-errCh
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if writeErr := <-errCh; writeErr != nil {
		return writeErr
	}
	return checkStatus("upload", resp)
}

func writeForm(form *multipart.Writer, file io.Reader, name, secret string, meta core.UploadMetadata) error {
	fields := [][2]string{
		{"secret", secret},
		{"filename", name},
		{"matchCode", meta.MatchCode},
		{"matchName", meta.MatchName},
		{"map", meta.Map},
		{"mode", meta.Mode},
		{"duration", strconv.FormatFloat(meta.DurationSecs, 'f', 3, 64)},
		{"kills", strconv.Itoa(meta.KillCount)},
	}
	for _, f := range fields {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("failed to write field %s: %w", f[0], err)
		}
	}

	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}
	return nil
}

func (c *Client) request(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// checkStatus turns a non-200 response into an error carrying the start of
// the response body.
func checkStatus(what string, resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%s: %w", what, ErrRejected)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return fmt.Errorf("%s returned status %d: %s", what, resp.StatusCode, msg)
	}
	return fmt.Errorf("%s returned status %d", what, resp.StatusCode)
}
