package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ClockIn records the badge starting work at the client's site. timestamp
// must already be in the site-local second-precision wire format; the
// client does not validate it.
func (c *Client) ClockIn(ctx context.Context, badge, timestamp string) (*ClockEvent, error) {
	return c.clockEvent(ctx, "clockin", badge, timestamp)
}

// ClockOut records the badge ending work at the client's site.
func (c *Client) ClockOut(ctx context.Context, badge, timestamp string) (*ClockEvent, error) {
	return c.clockEvent(ctx, "clockout", badge, timestamp)
}

func (c *Client) clockEvent(ctx context.Context, resource, badge, timestamp string) (*ClockEvent, error) {
	badge = strings.TrimSpace(badge)
	if badge == "" {
		return nil, errors.New("badge must not be empty")
	}
	params := Params{
		intParam("site", c.site),
		param("badge", badge),
		param("time", timestamp),
	}
	env, err := c.PostForm(ctx, resourcePath(resource), params)
	if err != nil {
		return nil, err
	}
	var event ClockEvent
	if err := env.DecodeData(&event); err != nil {
		return nil, fmt.Errorf("%s: %w", resource, err)
	}
	return &event, nil
}
