package reputation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/squadhub/internal/domain/user"
	"github.com/riskibarqy/squadhub/internal/platform/cache"
	"github.com/riskibarqy/squadhub/internal/platform/logging"
	"github.com/riskibarqy/squadhub/internal/platform/resilience"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 5 * time.Minute
	cacheKeyPrefix  = "reputation:"
)

type ClientConfig struct {
	HTTPClient       *http.Client
	BaseURL          string
	APIKey           string
	Timeout          time.Duration
	CacheTTL         time.Duration
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
	Logger           *logging.Logger
}

// Client fetches reputation scores from the external reputation provider.
// Results are cached briefly so eligibility checks do not hammer the
// provider, and a circuit breaker shields it when it degrades.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	cache      *cache.Store
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker(cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq),
		cache:      cache.NewStore(cacheTTL),
	}
}

func (c *Client) Fetch(ctx context.Context, userID string) (user.Reputation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return user.Reputation{}, crerr.New("user id is required")
	}

	value, err := c.cache.GetOrLoad(ctx, cacheKeyPrefix+userID, func(ctx context.Context) (any, error) {
		var rep user.Reputation
		callErr := c.breaker.Do(func() error {
			fetched, fetchErr := c.fetchRemote(ctx, userID)
			if fetchErr != nil {
				return fetchErr
			}
			rep = fetched
			return nil
		})
		if callErr != nil {
			return nil, callErr
		}
		return rep, nil
	})
	if err != nil {
		return user.Reputation{}, err
	}

	rep, ok := value.(user.Reputation)
	if !ok {
		return user.Reputation{}, crerr.Newf("unexpected cache value type %T", value)
	}

	return rep, nil
}

// Invalidate drops the cached score so the next Fetch hits the provider.
// Used after a forced refresh.
func (c *Client) Invalidate(ctx context.Context, userID string) {
	c.cache.Delete(ctx, cacheKeyPrefix+strings.TrimSpace(userID))
}

func (c *Client) fetchRemote(ctx context.Context, userID string) (user.Reputation, error) {
	requestURL := fmt.Sprintf("%s/v1/users/%s/reputation", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return user.Reputation{}, crerr.Wrap(err, "create reputation request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Reputation{}, crerr.Wrapf(err, "request reputation user_id=%s", userID)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Reputation{}, crerr.Wrap(err, "read reputation response")
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "reputation provider non-200",
			"status_code", resp.StatusCode,
			"user_id", userID,
		)
		return user.Reputation{}, crerr.Newf("reputation provider returned status %d", resp.StatusCode)
	}

	var decoded reputationResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Reputation{}, crerr.Wrap(err, "unmarshal reputation response")
	}

	tier, err := user.ParseTier(decoded.Tier)
	if err != nil {
		return user.Reputation{}, crerr.Wrapf(err, "parse reputation tier user_id=%s", userID)
	}

	return user.Reputation{
		Score: decoded.Score,
		Tier:  tier,
	}, nil
}

type reputationResponse struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
	Tier   string `json:"tier"`
}
