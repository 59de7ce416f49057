package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/maheshrc27/instaflow/internal/transfer"
)

// GraphClient talks to the Facebook/Instagram Graph API. Requests are never
// retried here; callers decide what a failure means.
type GraphClient struct {
	client *resty.Client
}

func NewGraphClient(baseURL string, timeout time.Duration) *GraphClient {
	return &GraphClient{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// Get issues a GET request. Absolute URLs bypass the base URL.
func (g *GraphClient) Get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	return decodeGraphResponse(resp, err, out)
}

func (g *GraphClient) Post(ctx context.Context, path string, form map[string]string, out interface{}) error {
	resp, err := g.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post(path)
	return decodeGraphResponse(resp, err, out)
}

func decodeGraphResponse(resp *resty.Response, err error, out interface{}) error {
	if err != nil {
		return fmt.Errorf("graph api request failed: %w", err)
	}

	body := resp.Body()

	var errResp transfer.GraphErrorResponse
	_ = json.Unmarshal(body, &errResp)

	if resp.IsError() || errResp.Error != nil {
		return &GraphAPIError{
			StatusCode: resp.StatusCode(),
			Payload:    errResp.Error,
			Body:       string(body),
		}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode graph api response: %w", err)
	}
	return nil
}
