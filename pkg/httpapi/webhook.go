package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lcpmarvel/bpmnlayout/pkg/httputil"
	"github.com/lcpmarvel/bpmnlayout/pkg/session"
)

// Notifier posts a job's terminal state to a configured webhook URL,
// retrying transient delivery failures with httputil.Retry the same way a
// registry client retries a flaky API call. Delivered is a namespaced
// delivery-state cache: a job whose terminal status was already posted is
// not posted again (Notify may be called more than once for the same job
// when several API instances race on it).
type Notifier struct {
	URL       string
	Client    *http.Client
	Logger    *log.Logger
	Delivered *httputil.Cache
}

// NewNotifier creates a Notifier posting to url with a 10-second per-attempt
// timeout and delivery state cached under the default cache directory.
func NewNotifier(url string, logger *log.Logger) *Notifier {
	n := &Notifier{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
		Logger: logger,
	}
	if c, err := httputil.NewCache("", session.DefaultTTL); err == nil {
		n.Delivered = c.Namespace("webhook:")
	}
	return n
}

// Notify implements the Server.Notify hook.
func (n *Notifier) Notify(job *session.Job) {
	if n.Delivered != nil {
		var delivered session.Status
		if ok, err := n.Delivered.Get(job.ID, &delivered); ok && err == nil && delivered == job.Status {
			return
		}
	}
	body, err := json.Marshal(job)
	if err != nil {
		n.Logger.Errorf("marshal webhook payload for job %s: %v", job.ID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = httputil.Retry(ctx, 3, time.Second, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
		if err != nil {
			return err // malformed URL, not worth retrying
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.Client.Do(req)
		if err != nil {
			return httputil.Retryable(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return httputil.Retryable(fmt.Errorf("webhook returned %d", resp.StatusCode))
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("webhook returned %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		n.Logger.Warnf("webhook delivery for job %s failed after retries: %v", job.ID, err)
		return
	}
	if n.Delivered != nil {
		_ = n.Delivered.Set(job.ID, job.Status)
	}
}
