package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// tokenPlaceholder may appear in source_url for APIs that carry the key in the path.
const tokenPlaceholder = "{token}"

// Credentials maps an auth name (e.g. "nyt") to its API token.
type Credentials map[string]string

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// requestURL injects the source's API token into its URL, either by replacing {token} or as a query parameter.
func requestURL(src Source, creds Credentials) (string, error) {
	if src.Auth == "" {
		return src.SourceURL, nil
	}

	token := strings.TrimSpace(creds[src.Auth])
	if token == "" {
		return "", fmt.Errorf("source %q requires api key %q which is not configured", src.ID, src.Auth)
	}

	if strings.Contains(src.SourceURL, tokenPlaceholder) {
		return strings.ReplaceAll(src.SourceURL, tokenPlaceholder, url.PathEscape(token)), nil
	}

	parsed, err := url.Parse(src.SourceURL)
	if err != nil {
		return "", fmt.Errorf("parse source_url for %q: %w", src.ID, err)
	}
	q := parsed.Query()
	q.Set(src.AuthParam, token)
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

// download performs the GET for a source and returns the body of a 200 response.
// Error messages never include the request URL since it may carry a token.
func download(ctx context.Context, client HTTPClient, src Source, creds Credentials) ([]byte, error) {
	target, err := requestURL(src, creds)
	if err != nil {
		return nil, err
	}

	resp, err := client.Get(ctx, target, Headers(src))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.ID, redact(err, target, src.SourceURL))
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d body: %s", src.ID, resp.StatusCode(), responseSnippet(body))
	}
	return body, nil
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redact(err error, target, public string) error {
	if err == nil || target == public {
		return err
	}
	msg := err.Error()
	if !strings.Contains(msg, target) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(msg, target, public), err: err}
}
