package tfe

import (
	"io"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/slok/tfe-workspaces/internal/internalerrors"
)

const maxErrorBodyBytes = 64 * 1024

// NewHTTPClient returns the HTTP client used for all the Terraform API calls.
//
// Non successful responses are returned as internalerrors.HTTPError by the transport,
// so the official client and our own JSON:API calls return the same errors. This also
// disables the retries of the official client, the errors go up as they are.
func NewHTTPClient() *http.Client {
	c := cleanhttp.DefaultPooledClient()
	c.Transport = errorTransport{next: c.Transport}
	return c
}

type errorTransport struct {
	next http.RoundTripper
}

func (e errorTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	resp, err := e.next.RoundTrip(r)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	return nil, &internalerrors.HTTPError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}
