package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hairizuanbinnoorazman/project-viewer-sync/document"
)

const (
	DefaultBaseURL     = "https://api.github.com/gists"
	DefaultDescription = "atom.io project-viewer backup files"

	acceptHeader = "application/vnd.github.v3+json"

	// rawContentHost serves truncated gist files.
	rawContentHost = "gist.githubusercontent.com"
)

// Client implements document.Client for GitHub Gists.
type Client struct {
	httpClient  *http.Client
	token       string
	baseURL     string
	description string
}

// NewClient creates a new gist client. A zero timeout means requests wait
// until the context is done.
func NewClient(credentials map[string]string, timeout time.Duration) (*Client, error) {
	token := credentials["token"]
	if token == "" {
		return nil, fmt.Errorf("gist: token is required")
	}

	baseURL := DefaultBaseURL
	if u := credentials["base_url"]; u != "" {
		baseURL = strings.TrimRight(u, "/")
	}

	description := DefaultDescription
	if d := credentials["description"]; d != "" {
		description = d
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		token:       token,
		baseURL:     baseURL,
		description: description,
	}, nil
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Response, error) {
	return c.send(ctx, method, endpoint, body, true)
}

func (c *Client) send(ctx context.Context, method, endpoint string, body interface{}, authorize bool) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("gist: failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("gist: failed to create request: %w", err)
	}

	req.Header.Set("Accept", acceptHeader)
	if authorize {
		req.Header.Set("Authorization", "token "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", document.ErrConnectionFailed, err)
	}
	return resp, nil
}

func (c *Client) documentURL(id string) string {
	return c.baseURL + "/" + url.PathEscape(id)
}

// trustedHost reports whether the token may be sent to rawURL. Only the API
// host and GitHub's raw content host qualify.
func (c *Client) trustedHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	return host == strings.ToLower(base.Host) || host == rawContentHost
}

// readBody reads the whole response body. A failed read means the
// connection dropped, not that the server answered badly.
func readBody(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", document.ErrConnectionFailed, err)
	}
	return data, nil
}

type gistResponse struct {
	ID    string                   `json:"id"`
	Files map[string]document.File `json:"files"`
}

type writeRequest struct {
	Description string                   `json:"description"`
	Public      bool                     `json:"public"`
	Files       map[string]document.File `json:"files"`
}

func (c *Client) writeBody(fileName string, payload json.RawMessage) writeRequest {
	content := "null"
	if len(payload) > 0 {
		content = string(payload)
	}
	return writeRequest{
		Description: c.description,
		Public:      false,
		Files: map[string]document.File{
			fileName: {Content: content},
		},
	}
}

// Fetch retrieves the content of fileName from gist id.
func (c *Client) Fetch(ctx context.Context, id, fileName string) (json.RawMessage, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.documentURL(id), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: get gist returned status %d", document.ErrFileNotFound, resp.StatusCode)
	}

	data, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	var g gistResponse
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("%w: failed to decode gist: %v", document.ErrFileNotFound, err)
	}

	file, ok := g.Files[fileName]
	if !ok {
		return nil, fmt.Errorf("%w: gist has no file %q", document.ErrFileNotFound, fileName)
	}

	content := file.Content
	if file.Truncated && file.RawURL != "" {
		content, err = c.fetchRaw(ctx, file.RawURL)
		if err != nil {
			return nil, err
		}
	}

	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("%w: %s", document.ErrInvalidContent, fileName)
	}
	return json.RawMessage(content), nil
}

// fetchRaw downloads a file that GitHub truncated in the gist payload.
func (c *Client) fetchRaw(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.send(ctx, http.MethodGet, rawURL, nil, c.trustedHost(rawURL))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: raw content returned status %d", document.ErrFileNotFound, resp.StatusCode)
	}

	data, err := readBody(resp)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Create creates a new private gist holding payload under fileName.
func (c *Client) Create(ctx context.Context, fileName string, payload json.RawMessage) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, c.baseURL, c.writeBody(fileName, payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: create gist failed with status %d: %s", document.ErrWriteFailed, resp.StatusCode, string(body))
	}

	data, err := readBody(resp)
	if err != nil {
		return "", err
	}

	var g gistResponse
	if err := json.Unmarshal(data, &g); err != nil || g.ID == "" {
		return "", fmt.Errorf("%w: create gist returned no id", document.ErrWriteFailed)
	}
	return g.ID, nil
}

// Patch replaces fileName in gist id with payload. Other files are left untouched.
func (c *Client) Patch(ctx context.Context, id, fileName string, payload json.RawMessage) error {
	resp, err := c.doRequest(ctx, http.MethodPatch, c.documentURL(id), c.writeBody(fileName, payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: update gist failed with status %d: %s", document.ErrWriteFailed, resp.StatusCode, string(body))
	}
	return nil
}

// Exists checks whether gist id exists. Only a 200 counts as existing.
func (c *Client) Exists(ctx context.Context, id string) (bool, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.documentURL(id), nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK, nil
}
