// Package analysis is the HTTP client for the remote spreadsheet analysis
// service. The service accepts uploaded workbooks per client id, runs the
// analysis asynchronously, and serves per-session status and per-client
// dashboard documents.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// UploadFile is one workbook handed to UploadAndAnalyze.
type UploadFile struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// Client talks to one analysis service instance.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New builds a Client for the given base URL. Upload requests carry no
// timeout: the analysis runs as long as it needs; everything else is
// bounded.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Health reports the service health document.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	return c.getJSON(ctx, "/health")
}

// TestS3 asks the service to verify its own object-store connectivity.
func (c *Client) TestS3(ctx context.Context) (map[string]any, error) {
	return c.getJSON(ctx, "/test-s3")
}

// Status fetches the analysis state for one upload session.
func (c *Client) Status(ctx context.Context, sessionID string) (map[string]any, error) {
	return c.getJSON(ctx, "/status/"+sessionID)
}

// Dashboard fetches the aggregated dashboard document for a client.
func (c *Client) Dashboard(ctx context.Context, clientID string) (map[string]any, error) {
	return c.getJSON(ctx, "/dashboard/"+clientID)
}

// UploadAndAnalyze submits workbooks for analysis as a multipart form with
// a client_id field and one "files" part per workbook.
func (c *Client) UploadAndAnalyze(ctx context.Context, clientID string, files []UploadFile) (map[string]any, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("client_id", clientID); err != nil {
		return nil, fmt.Errorf("write client_id: %w", err)
	}
	for _, f := range files {
		part, err := mw.CreatePart(filePartHeader(f.Name, f.ContentType))
		if err != nil {
			return nil, fmt.Errorf("create part %s: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Data); err != nil {
			return nil, fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-and-analyze", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	// No client timeout here; cancellation comes from ctx.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp)
}

func filePartHeader(name, contentType string) textproto.MIMEHeader {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	return h
}

func (c *Client) getJSON(ctx context.Context, path string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp)
}

func decodeResponse(resp *http.Response) (map[string]any, error) {
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("analysis service status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return doc, nil
}
