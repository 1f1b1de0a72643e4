// Package transport performs third-party HTTP calls on behalf of connectors.
// Upstream failures are normalized into a uniform {status, data} error shape
// so that connectors and the HTTP surface never inspect raw responses.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/coconup/nomadpi-services-api/core"
)

const defaultClientTimeout = 30 * time.Second
const defaultResponseBodyLimit int64 = 10 << 20 // 10 MiB

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type OutboundHTTPClient struct {
	Client               HTTPDoer
	DefaultHeaders       map[string]string
	MaxResponseBodyBytes int64
}

func NewOutboundHTTPClient(client HTTPDoer) *OutboundHTTPClient {
	if client == nil {
		client = &http.Client{Timeout: defaultClientTimeout}
	}
	return &OutboundHTTPClient{
		Client:               client,
		DefaultHeaders:       map[string]string{},
		MaxResponseBodyBytes: defaultResponseBodyLimit,
	}
}

// Do executes the request and returns the decoded upstream payload. Responses
// with status >= 400 come back as an error carrying the verbatim {status, data}
// pair; connection-level failures come back as a 500 internal server error
// pair so callers always see the same shape.
func (c *OutboundHTTPClient) Do(ctx context.Context, req core.OutboundRequest) (core.UpstreamResponse, error) {
	if c == nil || c.Client == nil {
		return core.UpstreamResponse{}, transportError(
			"transport: outbound client requires an http client",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			nil,
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.TrimSpace(strings.ToUpper(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	parsedURL, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil {
		return core.UpstreamResponse{}, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: invalid request url",
			http.StatusBadRequest,
			map[string]any{"url": strings.TrimSpace(req.URL)},
		)
	}
	if parsedURL.String() == "" {
		return core.UpstreamResponse{}, transportError(
			"transport: request url is required",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			nil,
		)
	}

	query := parsedURL.Query()
	for key, value := range req.Query {
		if strings.TrimSpace(key) == "" {
			continue
		}
		query.Set(strings.TrimSpace(key), value)
	}
	parsedURL.RawQuery = query.Encode()

	var bodyReader io.Reader
	hasBody := req.Body != nil
	if hasBody {
		encoded, marshalErr := json.Marshal(req.Body)
		if marshalErr != nil {
			return core.UpstreamResponse{}, transportWrapError(
				marshalErr,
				goerrors.CategoryBadInput,
				"transport: encode request body",
				http.StatusBadRequest,
				map[string]any{"method": method, "url": parsedURL.String()},
			)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, parsedURL.String(), bodyReader)
	if err != nil {
		return core.UpstreamResponse{}, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: create http request",
			http.StatusBadRequest,
			map[string]any{"method": method, "url": parsedURL.String()},
		)
	}
	if hasBody {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.DefaultHeaders {
		if strings.TrimSpace(key) == "" {
			continue
		}
		httpReq.Header.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	for key, value := range req.Headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		httpReq.Header.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	httpRes, err := c.Client.Do(httpReq)
	if err != nil {
		// Connection-level failures never carry an upstream payload; they are
		// reported with the same {status, data} shape as a failed response.
		return core.UpstreamResponse{}, core.NewUpstreamError(
			http.StatusInternalServerError,
			map[string]any{"message": "Internal Server Error"},
		)
	}
	defer httpRes.Body.Close()

	maxBodyBytes := c.MaxResponseBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultResponseBodyLimit
	}
	body, err := io.ReadAll(io.LimitReader(httpRes.Body, maxBodyBytes+1))
	if err != nil {
		return core.UpstreamResponse{}, core.NewUpstreamError(
			http.StatusInternalServerError,
			map[string]any{"message": "Internal Server Error"},
		)
	}
	if int64(len(body)) > maxBodyBytes {
		return core.UpstreamResponse{}, transportError(
			fmt.Sprintf("transport: response body exceeds limit of %d bytes", maxBodyBytes),
			goerrors.CategoryExternal,
			http.StatusBadGateway,
			map[string]any{"status_code": httpRes.StatusCode, "response_limit_b": maxBodyBytes},
		)
	}

	data := decodeBody(body)
	if httpRes.StatusCode >= http.StatusBadRequest {
		return core.UpstreamResponse{}, core.NewUpstreamError(httpRes.StatusCode, data)
	}

	return core.UpstreamResponse{
		StatusCode: httpRes.StatusCode,
		Data:       data,
	}, nil
}

// decodeBody favors JSON; non-JSON payloads are carried through as a string
// so that responses like CallMeBot's plain-text acknowledgements survive.
func decodeBody(body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err == nil {
		return decoded
	}
	return string(body)
}

var _ core.OutboundClient = (*OutboundHTTPClient)(nil)
