package vision

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/franckalain/fittrack/internal/models"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// DefaultGoogleModel is the Gemini model used when none is configured.
const DefaultGoogleModel = "gemini-1.5-flash"

// GoogleConfig holds configuration for the Google analyzer
type GoogleConfig struct {
	BaseConfig
	ProjectID       string `json:"project_id"`
	Location        string `json:"location"`
	CredentialsFile string `json:"credentials_file"`
	Model           string `json:"model"`
}

// Load loads the Google configuration
func (c *GoogleConfig) Load(log zerolog.Logger) error {
	if err := c.LoadConfig(log, c.ConfigPath, "google", c); err != nil {
		return err
	}

	// Fall back to environment variables if not set
	if c.ProjectID == "" {
		c.ProjectID = os.Getenv("GOOGLE_PROJECT_ID")
	}
	if c.Location == "" {
		c.Location = os.Getenv("GOOGLE_LOCATION")
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = os.Getenv("GOOGLE_CREDENTIALS_FILE")
	}
	if c.Model == "" {
		c.Model = DefaultGoogleModel
	}
	if c.ProjectID == "" || c.Location == "" {
		return fmt.Errorf("google analyzer needs project_id and location")
	}
	return nil
}

// GoogleAnalyzer implements Analyzer with Gemini on Vertex AI
type GoogleAnalyzer struct {
	config GoogleConfig
	client *genai.Client
	model  *genai.GenerativeModel
	log    zerolog.Logger
}

// GoogleAnalyzerFactory implements AnalyzerFactory for Google analyzers
type GoogleAnalyzerFactory struct {
	config GoogleConfig
	log    zerolog.Logger
}

// NewGoogleAnalyzerFactory creates a new Google analyzer factory
func NewGoogleAnalyzerFactory(config GoogleConfig, log zerolog.Logger) *GoogleAnalyzerFactory {
	return &GoogleAnalyzerFactory{config: config, log: log}
}

// CreateAnalyzer connects to Vertex AI
func (f *GoogleAnalyzerFactory) CreateAnalyzer(ctx context.Context) (Analyzer, error) {
	opts := []option.ClientOption{}
	if f.config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(f.config.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, f.config.ProjectID, f.config.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	model := client.GenerativeModel(f.config.Model)
	model.SetTemperature(0.2)

	return &GoogleAnalyzer{
		config: f.config,
		client: client,
		model:  model,
		log:    f.log.With().Str("analyzer", TypeGoogle).Logger(),
	}, nil
}

const analysisPrompt = `You are a nutrition analyst. Estimate the nutrition of the food shown or described.
Consider portion size, cooking method, oils and sauces. Reply with JSON only, in exactly this shape:
{
	"food_description": "what the food is",
	"calories": 350,
	"protein_grams": 20,
	"carb_grams": 40,
	"fat_grams": 10,
	"quantity": 1,
	"unit": "serving",
	"confidence": 0.85
}
Confidence reflects your certainty and should fall between 0.6 and 0.95.
Reference points: a medium banana is about 105 kcal, 1 g protein, 27 g carbs, 0.3 g fat;
6 oz grilled chicken breast about 280 kcal, 52 g protein, 0 g carbs, 6 g fat.`

// Analyze sends the image or description to Gemini.
func (m *GoogleAnalyzer) Analyze(ctx context.Context, in Input) (*models.NutritionData, error) {
	if m.model == nil {
		return nil, fmt.Errorf("model not loaded")
	}

	parts := []genai.Part{genai.Text(analysisPrompt)}
	switch {
	case len(in.Image) > 0:
		parts = append(parts, genai.ImageData(imageFormat(in.MIMEType), in.Image))
		if in.Description != "" {
			parts = append(parts, genai.Text("Notes from the user: "+in.Description))
		}
	case strings.TrimSpace(in.Description) != "":
		parts = append(parts, genai.Text("Food description: "+in.Description))
	default:
		return nil, fmt.Errorf("nothing to analyze")
	}

	m.log.Debug().Int("image_bytes", len(in.Image)).Msg("calling the model")
	resp, err := m.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to call ai: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response generated")
	}

	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	fallbackDesc := in.Description
	if fallbackDesc == "" {
		fallbackDesc = "Unknown food"
	}
	return ParseAnalysis(text.String(), fallbackDesc)
}

// Close closes the Vertex AI client.
func (m *GoogleAnalyzer) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close()
}

// imageFormat maps "image/png" to "png"; unknown types are sent as jpeg.
func imageFormat(mimeType string) string {
	if f, ok := strings.CutPrefix(mimeType, "image/"); ok && f != "" {
		return f
	}
	return "jpeg"
}
