package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// HTTPError carries status/body for non-2xx responses.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *HTTPError) Error() string {
	if msg := serverMessage(e.Body); msg != "" {
		return fmt.Sprintf("http error: %s %s status=%d message=%s", e.Method, e.URL, e.StatusCode, msg)
	}
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 900))
}

// serverMessage pulls a "message" field out of a JSON error body. Both the
// stub server and typical REST backends answer errors that way.
func serverMessage(body []byte) string {
	var v struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return ""
	}
	return strings.TrimSpace(v.Message)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr.StatusCode
	}
	return 0
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Do builds and sends one request and reads the full body, even on error,
// so the connection goes back to the pool. Brotli-encoded bodies are decoded.
// A non-2xx status comes back as *HTTPError.
func Do(
	ctx context.Context,
	client *http.Client,
	buildReq func(context.Context) (*http.Request, error),
) (*http.Response, []byte, error) {
	req, err := buildReq(ctx)
	if err != nil {
		return nil, nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}

	body, err := readAndClose(resp)
	if err != nil {
		return resp, body, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, body, nil
	}
	return resp, body, &HTTPError{
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}
}

func readAndClose(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return raw, err
	}
	return decodeBody(resp.Header.Get("Content-Encoding"), raw)
}

// decodeBody undoes Content-Encoding: br. Gzip is handled by http.Transport.
func decodeBody(encoding string, raw []byte) ([]byte, error) {
	if !strings.EqualFold(strings.TrimSpace(encoding), "br") || len(raw) == 0 {
		return raw, nil
	}
	out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(raw)))
	if err != nil {
		return raw, fmt.Errorf("httpx: brotli decode: %w", err)
	}
	return out, nil
}

// DoJSON is a convenience wrapper over Do that unmarshals JSON.
// An empty body leaves out untouched.
func DoJSON(
	ctx context.Context,
	client *http.Client,
	buildReq func(context.Context) (*http.Request, error),
	out any,
) error {
	_, body, err := Do(ctx, client, buildReq)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("json parse error: %w body=%s", err, snippet(body, 900))
	}
	return nil
}
