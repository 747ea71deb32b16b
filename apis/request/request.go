package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"cityweather/logger"
)

var (
	ErrStatus    = errors.New("unexpected status code")
	ErrMalformed = errors.New("malformed response body")
)

// NewClient returns a client that attaches the API key as keyParam to every request.
func NewClient(keyParam, apiKey string, log zerolog.Logger) *resty.Client {
	return resty.New().
		SetQueryParam(keyParam, apiKey).
		SetLogger(logger.Resty{Logger: log})
}

// Get fetches path with the given query parameters and returns the JSON body.
// Non-2xx responses fail with ErrStatus, bodies that are not JSON with ErrMalformed.
func Get(ctx context.Context, client *resty.Client, path string, params map[string]string) (json.RawMessage, error) {
	response, err := client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return nil, err
	}

	if !response.IsSuccess() {
		buf := &bytes.Buffer{}
		if err := json.Indent(buf, response.Body(), "", "  "); err != nil {
			buf.Reset()
			buf.Write(response.Body())
		}

		return nil, fmt.Errorf("%w: %d\n%s", ErrStatus, response.StatusCode(), buf.String())
	}

	body := response.Body()
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, path)
	}

	return append(json.RawMessage(nil), body...), nil
}
