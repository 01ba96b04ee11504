package core

import (
	"net/url"
	"strconv"
	"strings"
)

type queryParam struct {
	name  string
	value string
}

// RedirectMessageURI appends a message and an error flag to uri.
func RedirectMessageURI(message, uri string, isError bool) (string, error) {
	return buildRedirectURI(uri,
		queryParam{"message", message},
		queryParam{"error", strconv.FormatBool(isError)},
	)
}

// RedirectTokenURI appends the issued token and the supplier name to uri.
func RedirectTokenURI(token, uri, supplier string) (string, error) {
	return buildRedirectURI(uri,
		queryParam{"token", token},
		queryParam{"supplier", supplier},
	)
}

// RedirectErrorURI appends an error message to uri.
func RedirectErrorURI(message, uri string) (string, error) {
	return buildRedirectURI(uri, queryParam{"error", message})
}

func buildRedirectURI(uri string, params ...queryParam) (string, error) {
	if strings.TrimSpace(uri) == "" {
		return "", ErrInvalidURI
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", ErrInvalidURI.Clone().WithMetadata(map[string]any{
			"uri":   uri,
			"error": err.Error(),
		})
	}

	q := u.Query()
	for _, p := range params {
		q.Add(p.name, p.value)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// BaseRequestPath returns scheme://host[:port] dropping the port when it
// is the default one for the scheme.
func BaseRequestPath(rawBaseURL string) string {
	u, err := url.Parse(rawBaseURL)
	if err != nil || u.Host == "" {
		return strings.TrimRight(rawBaseURL, "/")
	}

	host := u.Hostname()
	port := u.Port()

	isDefault := (u.Scheme == "http" && port == "80") ||
		(u.Scheme == "https" && port == "443")

	if port == "" || isDefault {
		return u.Scheme + "://" + host
	}
	return u.Scheme + "://" + host + ":" + port
}
