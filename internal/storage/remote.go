package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hammamikhairi/focustrack/internal/domain"
	"github.com/hammamikhairi/focustrack/internal/logger"
)

var _ domain.SessionSink = (*RemoteSink)(nil)

// RemoteOption configures the RemoteSink.
type RemoteOption func(*RemoteSink)

// WithAttemptTimeout bounds each individual POST.
func WithAttemptTimeout(d time.Duration) RemoteOption {
	return func(r *RemoteSink) { r.http.Timeout = d }
}

// WithRetries sets how many attempts are made before giving up.
func WithRetries(attempts int, backoff time.Duration) RemoteOption {
	return func(r *RemoteSink) {
		if attempts > 0 {
			r.attempts = attempts
		}
		r.backoff = backoff
	}
}

// WithHTTPClient uses a copy of c, keeping the configured timeout when c
// has none. The caller's client is never modified.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *RemoteSink) {
		cp := *c
		if cp.Timeout == 0 {
			cp.Timeout = r.http.Timeout
		}
		r.http = &cp
	}
}

// RemoteSink posts completed sessions to the account backend.
type RemoteSink struct {
	endpoint string
	token    string
	attempts int
	backoff  time.Duration
	http     *http.Client
	log      *logger.Logger
}

// NewRemoteSink creates a sink for the backend at baseURL. Sessions are
// posted to {baseURL}/api/sessions with the token as a bearer credential.
func NewRemoteSink(baseURL, token string, log *logger.Logger, opts ...RemoteOption) *RemoteSink {
	r := &RemoteSink{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/sessions",
		token:    token,
		attempts: 3,
		backoff:  time.Second,
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// sessionPayload is the request body the backend expects.
type sessionPayload struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	Duration  int       `json:"duration"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Tag       string    `json:"tag,omitempty"`
	TaskID    string    `json:"taskId,omitempty"`
	Mood      string    `json:"mood,omitempty"`
}

// statusError is a non-2xx reply. Only server errors are retried.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("remote: API %d %s: %s", e.code, http.StatusText(e.code), e.body)
}

// Record posts the session, retrying transport failures and 5xx replies
// with linear backoff. The session ID lets the backend drop duplicates.
func (r *RemoteSink) Record(ctx context.Context, s domain.CompletedSession) error {
	body, err := json.Marshal(sessionPayload{
		ID:        s.ID,
		Mode:      s.Mode.String(),
		Duration:  s.DurationMinutes,
		StartTime: s.StartTime.UTC(),
		EndTime:   s.EndTime.UTC(),
		Tag:       s.Tag,
		TaskID:    s.TaskID,
		Mood:      s.Mood,
	})
	if err != nil {
		return fmt.Errorf("remote: marshal session: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if attempt > 1 {
			wait := time.Duration(attempt-1) * r.backoff
			r.log.Debug("remote: retrying session %s in %s (attempt %d/%d)", s.ID, wait, attempt, r.attempts)
			select {
			case <-ctx.Done():
				return fmt.Errorf("remote: %w (last error: %v)", ctx.Err(), lastErr)
			case <-time.After(wait):
			}
		}

		lastErr = r.post(ctx, body)
		if lastErr == nil {
			r.log.Debug("remote: stored session %s", s.ID)
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		r.log.Warn("remote: attempt %d for session %s failed: %v", attempt, s.ID, lastErr)
	}
	return lastErr
}

func (r *RemoteSink) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("remote: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("remote: %s: %w", resp.Status, domain.ErrUnauthorized)
	}
	return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(respBody))}
}

func retryable(err error) bool {
	if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	return true
}
