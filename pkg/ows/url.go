package ows

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildQueryURL appends KVP parameters to a service base URL. Parameters
// already present on the base URL take precedence and are not duplicated;
// parameter names are compared case-insensitively because OGC KVP keys are
// case-insensitive.
func BuildQueryURL(base string, params url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid service URL %q: %w", base, err)
	}

	existing := u.Query()
	present := make(map[string]bool, len(existing))
	for key := range existing {
		present[strings.ToLower(key)] = true
	}

	for key, values := range params {
		if present[strings.ToLower(key)] {
			continue
		}
		for _, v := range values {
			existing.Add(key, v)
		}
	}

	u.RawQuery = existing.Encode()
	return u.String(), nil
}
