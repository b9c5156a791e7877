package webid

import (
	"context"
	"io"
	"mime"
	"net/http"

	"github.com/pkg/errors"
)

// acceptRDF lists the profile serializations the graph parser understands.
const acceptRDF = "text/turtle;q=1.0, application/ld+json;q=0.9"

// Resolver fetches a profile document. The verifier performs no retries, no
// redirect policy and no caching of its own; timeouts and redirect behavior
// are whatever the resolver implements.
type Resolver interface {
	Fetch(ctx context.Context, uri string) (body []byte, mediaType string, err error)
}

// HTTPResolver dereferences profile URIs over HTTP(S) with content
// negotiation for the supported RDF serializations.
type HTTPResolver struct {
	// Client to fetch with. http.DefaultClient when nil.
	Client *http.Client
}

// Fetch retrieves the document at uri and reports its media type, stripped
// of parameters. Any non-2xx status is an error.
func (r *HTTPResolver) Fetch(ctx context.Context, uri string) ([]byte, string, error) {
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, "", errors.Wrapf(err, "build request for %s", uri)
	}
	req.Header.Set("Accept", acceptRDF)

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", errors.Wrapf(err, "fetch %s", uri)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", errors.Errorf("fetch %s: unexpected status %s", uri, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Wrapf(err, "read %s", uri)
	}

	mediaType := resp.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = mt
	}
	if mediaType == "" {
		mediaType = "text/turtle"
	}
	return body, mediaType, nil
}
