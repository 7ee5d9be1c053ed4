package layout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultAlgorithm asks the remote engine for its default layout that
// tolerates disconnected graphs.
const DefaultAlgorithm = "default_non_connected"

// HTTPEngine handles communication with an external layout service.
type HTTPEngine struct {
	baseURL    string
	algorithm  string
	httpClient *http.Client
}

// NewHTTPEngine creates a new layout service client
func NewHTTPEngine(baseURL string, timeout time.Duration) *HTTPEngine {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPEngine{
		baseURL:   baseURL,
		algorithm: DefaultAlgorithm,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// LayoutRequest is the body sent to the layout service
type LayoutRequest struct {
	Algorithm string       `json:"algorithm"`
	Nodes     []EngineNode `json:"nodes"`
	Edges     []EngineEdge `json:"edges"`
}

// LayoutResponse is the body returned by the layout service
type LayoutResponse struct {
	Positions []struct {
		ID int     `json:"id"`
		X  float64 `json:"x"`
		Y  float64 `json:"y"`
	} `json:"positions"`
}

// ComputeLayout posts the graph to the layout service and returns the
// positions it assigned.
func (c *HTTPEngine) ComputeLayout(ctx context.Context, g *EngineGraph) (Positions, error) {
	reqBody := LayoutRequest{
		Algorithm: c.algorithm,
		Nodes:     g.Nodes(),
		Edges:     g.Edges(),
	}
	if reqBody.Edges == nil {
		reqBody.Edges = []EngineEdge{}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/layouts", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call layout engine: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("layout engine returned status %d: %s", resp.StatusCode, string(body))
	}

	var layoutResp LayoutResponse
	if err := json.Unmarshal(body, &layoutResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	out := make(Positions, len(layoutResp.Positions))
	for _, p := range layoutResp.Positions {
		out[p.ID] = Point{X: p.X, Y: p.Y}
	}
	return out, nil
}
