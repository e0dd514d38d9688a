package notify

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/squadhub/internal/domain/notification"
)

const defaultPublishTimeout = 5 * time.Second

type WebhookPublisherConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// WebhookPublisher pushes notification events to a configured webhook so
// downstream consumers (chat bots, mobile push) can fan them out. Delivery is
// best effort; the Notifier treats publish failures as log-only.
type WebhookPublisher struct {
	client  *fasthttp.Client
	url     string
	token   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewWebhookPublisher(cfg WebhookPublisherConfig, logger *slog.Logger) (*WebhookPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	endpoint, err := validateWebhookURL(cfg.URL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid webhook url")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}

	return &WebhookPublisher{
		client:  &fasthttp.Client{},
		url:     endpoint,
		token:   strings.TrimSpace(cfg.Token),
		timeout: timeout,
		logger:  logger,
	}, nil
}

type webhookEvent struct {
	ID          string         `json:"id"`
	RecipientID string         `json:"recipientId"`
	Kind        string         `json:"kind"`
	Payload     map[string]any `json:"payload,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (p *WebhookPublisher) Publish(ctx context.Context, n notification.Notification) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	encoder := sonic.ConfigDefault.NewEncoder(buf)
	if err := encoder.Encode(webhookEvent{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Kind:        string(n.Kind),
		Payload:     n.Payload,
		CreatedAt:   n.CreatedAt,
	}); err != nil {
		return crerr.Wrap(err, "encode webhook event")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(p.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if p.token != "" {
		req.Header.Set("X-Webhook-Token", p.token)
	}
	req.SetBody(buf.Bytes())

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	if err := p.client.DoTimeout(req, resp, timeout); err != nil {
		return crerr.Wrapf(err, "publish webhook event kind=%s", n.Kind)
	}

	status := resp.StatusCode()
	if status/100 != 2 {
		return crerr.Newf("webhook returned status %d for event kind=%s", status, n.Kind)
	}

	p.logger.DebugContext(ctx, "webhook event published",
		"kind", string(n.Kind),
		"recipient_id", n.RecipientID,
	)

	return nil
}

func validateWebhookURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return candidate, nil
}
