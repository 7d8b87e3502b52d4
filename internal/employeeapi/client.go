package employeeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"employee-manager/internal/domain"
	"employee-manager/internal/httpx"
	"employee-manager/internal/logger"
)

const (
	contentTypeJSON = "application/json"
	acceptJSON      = contentTypeJSON

	// HeaderRequestID correlates a client log line with the server's.
	HeaderRequestID = "X-Request-Id"
)

// ErrMissingID is returned by Update for a record that was never created.
var ErrMissingID = errors.New("employeeapi: employee has no id")

// Client maps the employee operations onto {BaseURL}/employee/... .
// It holds no data of its own; every call is sent exactly once.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	tr := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
	}
}

// ListAll returns the server's full collection in server order.
func (c *Client) ListAll(ctx context.Context) ([]domain.Employee, error) {
	var out []domain.Employee
	if err := c.do(ctx, http.MethodGet, "/employee/all", nil, &out); err != nil {
		return nil, fmt.Errorf("employeeapi: list employees failed: %w", err)
	}
	if out == nil {
		out = []domain.Employee{}
	}
	return out, nil
}

// Find fetches a single record.
func (c *Client) Find(ctx context.Context, id int64) (domain.Employee, error) {
	var out domain.Employee
	if err := c.do(ctx, http.MethodGet, "/employee/find/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return domain.Employee{}, fmt.Errorf("employeeapi: find employee %d failed: %w", id, err)
	}
	return out, nil
}

// Create posts a new record and returns it with its server-assigned id.
func (c *Client) Create(ctx context.Context, in domain.EmployeeInput) (domain.Employee, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return domain.Employee{}, err
	}

	var out domain.Employee
	if err := c.do(ctx, http.MethodPost, "/employee/add", b, &out); err != nil {
		return domain.Employee{}, fmt.Errorf("employeeapi: add employee failed: %w", err)
	}
	return out, nil
}

// Update sends the full record and returns it as persisted.
func (c *Client) Update(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	if e.ID <= 0 {
		return domain.Employee{}, ErrMissingID
	}
	b, err := json.Marshal(e)
	if err != nil {
		return domain.Employee{}, err
	}

	var out domain.Employee
	if err := c.do(ctx, http.MethodPut, "/employee/update", b, &out); err != nil {
		return domain.Employee{}, fmt.Errorf("employeeapi: update employee %d failed: %w", e.ID, err)
	}
	return out, nil
}

// Delete removes a record. The server answers with an empty body.
func (c *Client) Delete(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, "/employee/delete/"+strconv.FormatInt(id, 10), nil, nil); err != nil {
		return fmt.Errorf("employeeapi: delete employee %d failed: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	requestID := uuid.NewString()
	ctx = logger.WithLogger(ctx, map[string]interface{}{
		"request_id": requestID,
		"method":     method,
		"path":       path,
	})
	start := time.Now()

	err := httpx.DoJSON(
		ctx,
		c.HTTP,
		func(ctx context.Context) (*http.Request, error) {
			var rd io.Reader
			if body != nil {
				rd = bytes.NewReader(body)
			}
			r, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
			if err != nil {
				return nil, err
			}
			if body != nil {
				r.Header.Set("Content-Type", contentTypeJSON)
			}
			r.Header.Set("Accept", acceptJSON)
			r.Header.Set("Accept-Encoding", "br")
			r.Header.Set(HeaderRequestID, requestID)
			return r, nil
		},
		out,
	)
	if err != nil {
		logger.DebugLog(ctx, "employee api call failed after %s: %v", time.Since(start), err)
		return err
	}
	logger.DebugLog(ctx, "employee api call ok in %s", time.Since(start))
	return nil
}
