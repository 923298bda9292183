package blockchain

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/orris-inc/satsgate/internal/application/payment/blockchain"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

// Maximum response body size for the indexing API (64KB)
const maxResponseSize = 64 << 10

// EsploraClient talks to an Esplora-compatible REST API such as mempool.space
// or Blockstream.
type EsploraClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Interface
}

func NewEsploraClient(baseURL string, httpClient *http.Client, logger logger.Interface) *EsploraClient {
	return &EsploraClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Ensure EsploraClient implements ChainInfo
var _ blockchain.ChainInfo = (*EsploraClient)(nil)

// TipHeight returns the height of the best block.
func (c *EsploraClient) TipHeight(ctx context.Context) (int64, error) {
	body, err := c.get(ctx, "/blocks/tip/height")
	if err != nil {
		return 0, err
	}

	height, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tip height %q: %w", body, err)
	}
	if height <= 0 {
		return 0, fmt.Errorf("invalid tip height: %d", height)
	}
	return height, nil
}

func (c *EsploraClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call blockchain api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debugw("blockchain api returned error", "path", path, "status", resp.StatusCode)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return body, nil
}
