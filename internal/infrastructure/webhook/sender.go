package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	appwebhook "github.com/orris-inc/satsgate/internal/application/webhook"
	"github.com/orris-inc/satsgate/internal/shared/constants"
)

// Subscriber responses are drained up to this size and otherwise ignored.
const maxResponseSize = 64 << 10

const userAgent = "satsgate-webhooks/1.0"

// HTTPSender posts signed event payloads to subscriber endpoints.
type HTTPSender struct {
	httpClient *http.Client
}

func NewHTTPSender(httpClient *http.Client) *HTTPSender {
	return &HTTPSender{httpClient: httpClient}
}

// Ensure HTTPSender implements Sender
var _ appwebhook.Sender = (*HTTPSender)(nil)

func (s *HTTPSender) Send(ctx context.Context, req appwebhook.SendRequest) (int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	httpReq.Header.Set(constants.HeaderUserAgent, userAgent)
	httpReq.Header.Set(constants.HeaderWebhookSignature, SignatureHeader(req.Secret, req.Timestamp, req.Payload))
	httpReq.Header.Set(constants.HeaderWebhookEvent, req.EventType)
	httpReq.Header.Set(constants.HeaderWebhookDeliveryID, req.DeliveryID)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	return resp.StatusCode, nil
}
