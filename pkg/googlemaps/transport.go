package googlemaps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// call performs a GET against endpoint, retrying a retryable failure once.
// Each attempt gets its own timeout. It returns the API body status.
func (c *Client) call(ctx context.Context, endpoint string, params url.Values, timeout time.Duration, out any) (string, error) {
	params.Set("key", c.apiKey)
	target := c.baseURL + "/" + endpoint + "?" + params.Encode()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryWait
	policy.RandomizationFactor = 0

	var status string
	attempt := 0
	op := func() error {
		attempt++
		var err error
		status, err = c.do(ctx, endpoint, target, timeout, out)
		if err == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		log.Warn().Err(err).Str("endpoint", endpoint).Int("attempt", attempt).Msg("google maps call failed")
		return err
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, 1), ctx))
	return status, err
}

func (c *Client) do(ctx context.Context, endpoint, target string, timeout time.Duration, out any) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target, nil)
	if err != nil {
		return "", &APIError{Endpoint: endpoint, Message: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &APIError{Endpoint: endpoint, Message: err.Error(), retryable: true}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return "", &APIError{Endpoint: endpoint, Message: fmt.Sprintf("read body: %v", err), retryable: true}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &APIError{
			Endpoint:   endpoint,
			HTTPStatus: resp.StatusCode,
			Message:    string(raw),
			retryable:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError,
		}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", &APIError{Endpoint: endpoint, Message: fmt.Sprintf("decode body: %v", err)}
	}
	switch env.Status {
	case statusOK, statusZeroResults:
	case statusOverQueryLimit, statusUnknownError:
		return "", &APIError{Endpoint: endpoint, Status: env.Status, Message: env.ErrorMessage, retryable: true}
	default:
		return "", &APIError{Endpoint: endpoint, Status: env.Status, Message: env.ErrorMessage}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return "", &APIError{Endpoint: endpoint, Message: fmt.Sprintf("decode body: %v", err)}
	}
	return env.Status, nil
}
