package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bnema/teamboard/internal/domain"
	"github.com/bnema/teamboard/internal/ports"
)

const DefaultTimeout = 500 * time.Millisecond

// HTTPNotifier pokes a local listener after every mutation. Delivery runs in
// the background, is best effort and never fails or delays the caller.
type HTTPNotifier struct {
	URL        string
	Project    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Clock      ports.Clock
	Logger     *slog.Logger

	inflight sync.WaitGroup
}

var _ ports.Notifier = (*HTTPNotifier)(nil)

type event struct {
	Event   string `json:"event"`
	Project string `json:"project"`
	At      string `json:"at"`
}

func (n *HTTPNotifier) Notify(ctx context.Context, name string) {
	url := strings.TrimSpace(n.URL)
	if url == "" {
		return
	}

	body, err := json.Marshal(event{
		Event:   name,
		Project: n.Project,
		At:      domain.FormatTimestamp(n.clock().Now()),
	})
	if err != nil {
		n.logger().Debug("encode notification", "event", name, "error", err)
		return
	}

	timeout := n.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	// The request outlives the mutation that triggered it, so it keeps the
	// caller's values but not its cancellation.
	requestCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)

	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		defer cancel()

		n.post(requestCtx, url, name, body)
	}()
}

// Wait blocks until every notification already started has been delivered
// or given up. Each one is bounded by Timeout.
func (n *HTTPNotifier) Wait() {
	n.inflight.Wait()
}

func (n *HTTPNotifier) post(ctx context.Context, url, name string, body []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		n.logger().Debug("build notification request", "url", url, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient().Do(req)
	if err != nil {
		n.logger().Debug("notification not delivered", "url", url, "event", name, "error", err)
		return
	}
	_ = resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		n.logger().Debug("notification rejected", "url", url, "event", name, "status", resp.StatusCode)
	}
}

func (n *HTTPNotifier) httpClient() *http.Client {
	if n.HTTPClient != nil {
		return n.HTTPClient
	}
	return http.DefaultClient
}

func (n *HTTPNotifier) clock() ports.Clock {
	if n.Clock != nil {
		return n.Clock
	}
	return ports.SystemClock{}
}

func (n *HTTPNotifier) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.New(slog.DiscardHandler)
}
