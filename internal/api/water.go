package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/franckalain/fittrack/internal/models"
	"github.com/pkg/errors"
)

// AddWaterIntake records amountML for date, or today. Negative amounts
// correct earlier entries.
func (c *Client) AddWaterIntake(ctx context.Context, amountML int, date string) Result[models.WriteResponse] {
	const op = "water-intake"
	if amountML == 0 {
		return Failed[models.WriteResponse](errors.Wrap(ErrInvalidAmount, op))
	}
	req, err := c.jsonRequest(ctx, http.MethodPost, "/water-intake", models.WaterIntakeRequest{AmountML: amountML, Date: date})
	if err != nil {
		return Failed[models.WriteResponse](errors.Wrap(err, op))
	}
	return call(ctx, c, op, req, func() models.WriteResponse { return waterRecorded })
}

// WaterIntake returns the water logged on date, or today.
func (c *Client) WaterIntake(ctx context.Context, date string) Result[models.WaterIntakeRecord] {
	const op = "water-intake"
	var q url.Values
	if date != "" {
		q = url.Values{"date": {date}}
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/water-intake", q, nil, "")
	if err != nil {
		return Failed[models.WaterIntakeRecord](errors.Wrap(err, op))
	}
	return call(ctx, c, op, req, func() models.WaterIntakeRecord {
		if date == "" {
			return demoWater(c.today())
		}
		return demoWater(date)
	})
}

// HealthCheck reports whether the backend is up. It is sent without
// credentials.
func (c *Client) HealthCheck(ctx context.Context) Result[models.HealthStatus] {
	const op = "health"
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil, nil, "")
	if err != nil {
		return Failed[models.HealthStatus](errors.Wrap(err, op))
	}
	req.Header.Del("Authorization")
	return call(ctx, c, op, req, func() models.HealthStatus { return offline })
}
