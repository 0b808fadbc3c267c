package estimate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultDeepFaceURL is where `deepface api` listens by default.
	DefaultDeepFaceURL = "http://localhost:5000"

	defaultDeepFaceTimeout = 2 * time.Minute

	// maxErrorBody caps how much of a failed response is quoted in errors.
	maxErrorBody = 512
)

// DeepFace estimates ages through the DeepFace REST API.
type DeepFace struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// DeepFaceOption configures a DeepFace estimator.
type DeepFaceOption func(*DeepFace)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) DeepFaceOption {
	return func(d *DeepFace) { d.client = c }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) DeepFaceOption {
	return func(d *DeepFace) { d.log = log }
}

// NewDeepFace returns an estimator for the DeepFace service at baseURL.
func NewDeepFace(baseURL string, opts ...DeepFaceOption) *DeepFace {
	if baseURL == "" {
		baseURL = DefaultDeepFaceURL
	}

	d := &DeepFace{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultDeepFaceTimeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type analyzeRequest struct {
	Img     string   `json:"img"`
	Actions []string `json:"actions"`
}

type analyzeResponse struct {
	Results []struct {
		Age *float64 `json:"age"`
	} `json:"results"`
	Error string `json:"error"`
}

func (d *DeepFace) EstimateAge(ctx context.Context, path string) (int, error) {
	img, err := Load(path)
	if err != nil {
		return 0, err
	}

	body, err := json.Marshal(analyzeRequest{
		Img:     "data:" + img.MIMEType() + ";base64," + base64.StdEncoding.EncodeToString(img.Data),
		Actions: []string{"age"},
	})
	if err != nil {
		return 0, fmt.Errorf("encode analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("deepface analyze %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if bytes.Contains(bytes.ToLower(snippet), []byte("face could not be detected")) {
			return 0, fmt.Errorf("deepface analyze %s: %w", path, ErrNoFace)
		}
		return 0, fmt.Errorf("deepface analyze %s: unexpected status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode deepface response: %w", err)
	}
	if len(out.Results) == 0 || out.Results[0].Age == nil {
		return 0, fmt.Errorf("deepface analyze %s: %w", path, ErrNoFace)
	}

	age := roundAge(*out.Results[0].Age)
	d.log.Debug("deepface estimate", zap.String("file", path), zap.Int("age", age), zap.Int("faces", len(out.Results)))
	return age, nil
}
