package dispatch

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"CampusSafe/pkg/logger"
	"CampusSafe/pkg/safety"
	"CampusSafe/pkg/utils"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body when a
// signing secret is configured.
const SignatureHeader = "X-Signature-SHA256"

// GatewayConfig configures a GatewayDispatcher.
type GatewayConfig struct {
	URL     string
	Token   string
	Secret  string
	Timeout time.Duration
	Retry   utils.RetryConfig
}

// GatewayDispatcher asks an HTTP telephony gateway to place the call.
type GatewayDispatcher struct {
	cfg        GatewayConfig
	caller     Caller
	httpClient *http.Client
	logger     *logger.Logger
	now        func() time.Time
}

// NewGatewayDispatcher builds a dispatcher posting to cfg.URL.
func NewGatewayDispatcher(cfg GatewayConfig, caller Caller, log *logger.Logger) *GatewayDispatcher {
	if log == nil {
		log = logger.Nop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GatewayDispatcher{
		cfg:        cfg,
		caller:     caller,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
		now:        time.Now,
	}
}

// statusError is a non-2xx gateway response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("gateway returned %d", e.code)
	}
	return fmt.Sprintf("gateway returned %d: %s", e.code, e.body)
}

// Call posts one CallEvent, retrying transient failures.
func (d *GatewayDispatcher) Call(ctx context.Context) error {
	if d.cfg.URL == "" {
		return safety.NewDispatchError(safety.KindNotConfigured, errors.New("gateway url is empty"))
	}

	event := d.caller.event(d.now())
	payload, err := json.Marshal(event)
	if err != nil {
		return safety.NewDispatchError(safety.KindRejected, fmt.Errorf("marshal call event: %w", err))
	}

	err = utils.ExecuteWithRetryContext(ctx, func() error {
		return d.post(ctx, payload)
	}, d.cfg.Retry, func(err error, next time.Duration) {
		d.logger.Warn("dispatch %s failed, retrying in %v: %v", event.RequestID, next, err)
	})
	if err == nil {
		d.logger.Info("dispatch %s accepted by gateway", event.RequestID)
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		err = fmt.Errorf("%w (last error: %v)", ctxErr, err)
	}
	return safety.NewDispatchError(classify(ctx, err), err)
}

func (d *GatewayDispatcher) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return utils.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if d.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+d.cfg.Token)
	}
	if d.cfg.Secret != "" {
		req.Header.Set(SignatureHeader, sign(payload, d.cfg.Secret))
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return utils.Permanent(ctx.Err())
		}
		// %v: a client timeout must read as unreachable, not as a caller cancel.
		return fmt.Errorf("send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	serr := &statusError{code: resp.StatusCode, body: string(bytes.TrimSpace(body))}
	if utils.IsRetryableError(resp.StatusCode) {
		return serr
	}
	return utils.Permanent(serr)
}

// Ping checks that the gateway answers HTTP. Any response below 500 counts,
// since gateways commonly reject HEAD on the dispatch endpoint.
func (d *GatewayDispatcher) Ping(ctx context.Context) error {
	if d.cfg.URL == "" {
		return safety.NewDispatchError(safety.KindNotConfigured, errors.New("gateway url is empty"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, d.cfg.URL, nil)
	if err != nil {
		return safety.NewDispatchError(safety.KindRejected, fmt.Errorf("build request: %w", err))
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return safety.NewDispatchError(safety.KindUnreachable, fmt.Errorf("send request: %v", err))
	}
	resp.Body.Close()

	if resp.StatusCode >= 500 {
		return safety.NewDispatchError(safety.KindUnreachable, &statusError{code: resp.StatusCode})
	}
	return nil
}

// classify maps a final gateway error onto the dispatch error taxonomy.
func classify(ctx context.Context, err error) safety.ErrorKind {
	if ctx.Err() != nil {
		return safety.KindOf(ctx.Err())
	}
	var serr *statusError
	if errors.As(err, &serr) {
		switch {
		case serr.code == http.StatusUnauthorized || serr.code == http.StatusForbidden:
			return safety.KindPermissionDenied
		case utils.IsRetryableError(serr.code):
			return safety.KindUnreachable
		default:
			return safety.KindRejected
		}
	}
	return safety.KindUnreachable
}

func sign(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
