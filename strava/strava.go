// Package strava is the upstream client for the Strava v3 API: the athlete's
// recent activities and the detail of a single activity.
//
// Failures are always returned as errors. A non-2xx answer becomes *APIError
// carrying Strava's fault body; the client never substitutes an empty list or
// object for a failed call.
package strava

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"resty.dev/v3"
)

const DefaultBaseURL = "https://www.strava.com/api/v3"

// MaxPerPage is the largest page size the activities endpoint accepts.
const MaxPerPage = 200

var ErrInvalidPerPage = errors.New("strava: per_page must be between 1 and 200")

type Config struct {
	BaseURL     string        // empty => DefaultBaseURL
	AccessToken string        // sent as "Authorization: Bearer <token>"
	Timeout     time.Duration // per request; 0 => 10s
	RetryCount  int           // transport-level retries; 0 disables
}

type Client struct {
	resty *resty.Client
}

func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	rc := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.AccessToken != "" {
		rc.SetAuthToken(cfg.AccessToken)
	}
	if cfg.RetryCount > 0 {
		rc.SetRetryCount(cfg.RetryCount).
			SetRetryWaitTime(200 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second)
	}
	return &Client{resty: rc}
}

// ListActivities returns the authenticated athlete's most recent activities,
// newest first. The result is never nil on success.
func (c *Client) ListActivities(ctx context.Context, perPage int) ([]Activity, error) {
	if perPage < 1 || perPage > MaxPerPage {
		return nil, ErrInvalidPerPage
	}
	var out []Activity
	fault := &Fault{}
	res, err := c.resty.R().
		SetContext(ctx).
		SetQueryParam("per_page", strconv.Itoa(perPage)).
		SetResult(&out).
		SetError(fault).
		Get("/athlete/activities")
	if err := check(res, err, fault, "list activities"); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Activity{}
	}
	return out, nil
}

// GetActivity returns the detailed representation of one activity.
func (c *Client) GetActivity(ctx context.Context, id int64) (ActivityDetail, error) {
	var out ActivityDetail
	fault := &Fault{}
	res, err := c.resty.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetResult(&out).
		SetError(fault).
		Get("/activities/{id}")
	if err := check(res, err, fault, "get activity "+strconv.FormatInt(id, 10)); err != nil {
		return ActivityDetail{}, err
	}
	if out.ID == 0 {
		return ActivityDetail{}, fmt.Errorf("strava: get activity %d: empty response", id)
	}
	return out, nil
}

func (c *Client) Close() error {
	return c.resty.Close()
}

func check(res *resty.Response, err error, fault *Fault, op string) error {
	if err != nil {
		return fmt.Errorf("strava: %s: %w", op, err)
	}
	if res.IsError() || res.StatusCode() < http.StatusOK || res.StatusCode() >= http.StatusMultipleChoices {
		apiErr := &APIError{StatusCode: res.StatusCode(), Op: op}
		if fault != nil {
			apiErr.Message = fault.Message
			apiErr.Errors = fault.Errors
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(res.StatusCode())
		}
		return apiErr
	}
	return nil
}
