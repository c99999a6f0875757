// Package backend is the HTTP client for the statement-analysis backend:
// preview upload, page images, parse previews and mapping confirmation.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/statementkit/colgrid/internal/model"
)

// Client talks to the analysis backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// parsePreviewRequest is the wire shape of a parse-preview call. Bounds
// carry geometry only; classification travels in the mapping.
type parsePreviewRequest struct {
	FilePath      string                      `json:"filePath"`
	ColumnMapping map[string]model.ColumnType `json:"columnMapping"`
	ColumnBounds  []model.ColumnBound         `json:"columnBounds"`
}

// UploadPreview posts a statement PDF and returns the backend's analysis:
// detected columns, header region, page geometry and an optional matched
// template.
func (c *Client) UploadPreview(ctx context.Context, filename string, file io.Reader) (*model.Preview, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy file into form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/preview", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	slog.Debug("Uploading statement for preview", "filename", filename)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload statement: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var preview model.Preview
	if err := json.NewDecoder(resp.Body).Decode(&preview); err != nil {
		return nil, fmt.Errorf("failed to decode preview: %w", err)
	}
	return &preview, nil
}

// PageImage fetches the rendered bitmap for one page of a previewed file.
// The decoded image's natural width seeds the coordinate transform.
func (c *Client) PageImage(ctx context.Context, filePath string, page int) ([]byte, error) {
	u, err := url.Parse(c.baseURL + "/api/preview/page")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	q.Set("filePath", filePath)
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read page image: %w", err)
	}
	return data, nil
}

// ParsePreview asks the backend to parse a sample of rows under the given
// geometry and mapping.
func (c *Client) ParsePreview(ctx context.Context, filePath string, mapping map[string]model.ColumnType, bounds []model.ColumnBound) (*model.ParseResult, error) {
	payload := parsePreviewRequest{
		FilePath:      filePath,
		ColumnMapping: mapping,
		ColumnBounds:  bounds,
	}

	var result model.ParseResult
	if err := c.postJSON(ctx, "/api/parse-preview", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ConfirmMapping commits the editor state and starts the full pipeline.
func (c *Client) ConfirmMapping(ctx context.Context, sub model.Submission) (*model.ConfirmResult, error) {
	slog.Info("Confirming column mapping",
		"file_path", sub.FilePath,
		"mapped_columns", len(sub.Mapping),
		"header_fields", len(sub.HeaderFields))

	var result model.ConfirmResult
	if err := c.postJSON(ctx, "/api/confirm", sub, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("backend error: %d - %s", resp.StatusCode, string(body))
}
