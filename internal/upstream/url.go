package upstream

import (
	"fmt"
	"net/url"
)

// secretParams are query parameters whose values never leave the process
// in logs, errors or cache keys.
var secretParams = []string{"api_key", "apikey"}

// buildURL merges params into endpoint's query string. It returns the URL to
// request and a copy with secret parameters masked.
func buildURL(endpoint string, params url.Values) (string, string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", "", fmt.Errorf("invalid endpoint %q: missing scheme or host", endpoint)
	}

	query := u.Query()
	for key, values := range params {
		query[key] = append([]string(nil), values...)
	}
	u.RawQuery = query.Encode()
	requestURL := u.String()

	u.RawQuery = Redact(query).Encode()
	return requestURL, u.String(), nil
}

// Redact returns a copy of params with API keys replaced by "***".
func Redact(params url.Values) url.Values {
	out := make(url.Values, len(params))
	for key, values := range params {
		out[key] = append([]string(nil), values...)
	}
	for _, key := range secretParams {
		if out.Has(key) {
			out.Set(key, "***")
		}
	}
	return out
}
