package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/franckalain/fittrack/internal/models"
	"github.com/franckalain/fittrack/internal/nutrition"
	"github.com/franckalain/fittrack/internal/vision"
	"github.com/pkg/errors"
)

// SearchFood queries the food database. An empty query lists everything.
func (c *Client) SearchFood(ctx context.Context, query string) Result[[]models.FoodItem] {
	const op = "search-food"
	var q url.Values
	if query = strings.TrimSpace(query); query != "" {
		q = url.Values{"q": {query}}
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/food-database", q, nil, "")
	if err != nil {
		return Failed[[]models.FoodItem](errors.Wrap(err, op))
	}
	return call(ctx, c, op, req, func() []models.FoodItem { return demoSearch(query) })
}

// Image is a meal photo to analyze.
type Image struct {
	Data     []byte
	Filename string
	MIMEType string
}

// AnalyzeFood estimates the nutrition of a meal photo. When the backend
// fails, the local analyzer is tried before demo data.
func (c *Client) AnalyzeFood(ctx context.Context, img Image) Result[*models.NutritionData] {
	const op = "analyze-food"
	if len(img.Data) == 0 {
		return Failed[*models.NutritionData](errors.Wrap(ErrMissingField, op+": image is empty"))
	}

	body, contentType, err := multipartImage(img)
	if err != nil {
		return Failed[*models.NutritionData](errors.Wrap(err, op))
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/analyze-food", nil, body, contentType)
	if err != nil {
		return Failed[*models.NutritionData](errors.Wrap(err, op))
	}
	return c.analyze(ctx, op, req, vision.Input{Image: img.Data, MIMEType: img.MIMEType})
}

// AnalyzeDescription estimates the nutrition of a meal described in words.
func (c *Client) AnalyzeDescription(ctx context.Context, description string) Result[*models.NutritionData] {
	const op = "analyze-food"
	description = strings.TrimSpace(description)
	if description == "" {
		return Failed[*models.NutritionData](errors.Wrap(ErrMissingField, op+": description is empty"))
	}
	req, err := c.jsonRequest(ctx, http.MethodPost, "/analyze-food", map[string]string{"description": description})
	if err != nil {
		return Failed[*models.NutritionData](errors.Wrap(err, op))
	}
	return c.analyze(ctx, op, req, vision.Input{Description: description})
}

func (c *Client) analyze(ctx context.Context, op string, req *http.Request, in vision.Input) (res Result[*models.NutritionData]) {
	start := time.Now()
	defer func() { c.metrics.observe(op, res.Status, start) }()
	var out *models.NutritionData
	err := c.send(req, &out)
	if err == nil && out != nil {
		if out.Error != "" {
			return Failed[*models.NutritionData](errors.Wrap(ErrRejected, out.Error))
		}
		withTip(out)
		return OK(out)
	}
	if err == nil {
		err = errors.New("empty analysis")
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Failed[*models.NutritionData](errors.Wrap(ctxErr, op))
	}

	if c.analyzer != nil {
		local, aerr := c.analyzer.Analyze(ctx, in)
		if aerr == nil {
			c.log.Warn().Stack().Err(err).Str("op", op).Msg("backend unavailable, used local analyzer")
			withTip(local)
			return Degraded(local, errors.Wrap(err, op))
		}
		c.log.Warn().Stack().Err(aerr).Str("op", op).Msg("local analyzer failed")
	}
	c.log.Warn().Stack().Err(err).Str("op", op).Msg("backend unavailable, using demo data")
	return Degraded(demoAnalysis(), errors.Wrap(err, op))
}

func withTip(n *models.NutritionData) {
	if n.NutritionTip == "" {
		n.NutritionTip = nutrition.Tip(n.Calories, n.Protein, n.Carbs, n.Fat)
	}
}

func multipartImage(img Image) (*bytes.Buffer, string, error) {
	filename := img.Filename
	if filename == "" {
		filename = "meal.jpg"
	}
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = http.DetectContentType(img.Data)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+escapeQuotes(filename)+`"`)
	h.Set("Content-Type", mimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", errors.Wrap(err, "create image part")
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", errors.Wrap(err, "write image part")
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart body")
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

// AddFood logs an entry for date, or today when date is empty.
func (c *Client) AddFood(ctx context.Context, entry models.FoodEntry, date string) Result[models.WriteResponse] {
	const op = "add-food"
	if err := entry.Validate(); err != nil {
		return Failed[models.WriteResponse](errors.Wrap(err, op))
	}
	req, err := c.jsonRequest(ctx, http.MethodPost, "/add-food", models.AddFoodRequest{FoodEntry: entry, Date: date})
	if err != nil {
		return Failed[models.WriteResponse](errors.Wrap(err, op))
	}
	return call(ctx, c, op, req, func() models.WriteResponse { return foodAdded })
}

// DailyNutrition returns the entries and totals of date, or today.
func (c *Client) DailyNutrition(ctx context.Context, date string) Result[models.DailyNutrition] {
	const op = "daily-nutrition"
	var q url.Values
	if date != "" {
		q = url.Values{"date": {date}}
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/daily-nutrition", q, nil, "")
	if err != nil {
		return Failed[models.DailyNutrition](errors.Wrap(err, op))
	}
	return call(ctx, c, op, req, func() models.DailyNutrition {
		if date == "" {
			return demoDaily(c.today())
		}
		return demoDaily(date)
	})
}

// Analytics returns statistics over the last days days, 7 when days <= 0.
func (c *Client) Analytics(ctx context.Context, days int) Result[models.AnalyticsData] {
	const op = "analytics"
	if days <= 0 {
		days = 7
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/analytics", url.Values{"days": {strconv.Itoa(days)}}, nil, "")
	if err != nil {
		return Failed[models.AnalyticsData](errors.Wrap(err, op))
	}
	return call(ctx, c, op, req, func() models.AnalyticsData { return demoAnalytics(days, c.now()) })
}
