package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/flizi/authcenter/internal/metrics"
)

// maxBody caps how much of a provider response we are willing to read.
const maxBody = 1 << 20

// decodeJSONBody executes req and unmarshals the body into out. The body is
// decoded as JSON whatever the Content-Type says. Network failures and
// non-2xx statuses map to ErrUnreachable; an unparseable body maps to
// ErrRejected.
func decodeJSONBody(client *http.Client, req *http.Request, providerName, call string, out any) error {
	start := time.Now()
	resp, err := client.Do(req)
	metrics.ProviderRequests.WithLabelValues(providerName, call).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnreachable, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: undecodable body: %v", ErrRejected, err)
	}
	return nil
}
