package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
	openrouterx "github.com/medflow-ai/appointment-agent/pkg/openrouter"
)

// Config selects the OpenRouter model per component. The classifier and
// each task handler can run a different model and temperature; unset
// overrides fall back to the defaults.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	ClassifierModel         string  `envconfig:"CLASSIFIER_MODEL" split_words:"true"`
	AvailabilityModel       string  `envconfig:"AVAILABILITY_MODEL" split_words:"true"`
	BookingModel            string  `envconfig:"BOOKING_MODEL" split_words:"true"`
	GeneralModel            string  `envconfig:"GENERAL_MODEL" split_words:"true"`
	ClassifierTemperature   float32 `envconfig:"CLASSIFIER_TEMPERATURE" split_words:"true" default:"-1"`
	AvailabilityTemperature float32 `envconfig:"AVAILABILITY_TEMPERATURE" split_words:"true" default:"-1"`
	BookingTemperature      float32 `envconfig:"BOOKING_TEMPERATURE" split_words:"true" default:"-1"`
	GeneralTemperature      float32 `envconfig:"GENERAL_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// ClassifierConfig returns the OpenRouter config for the intent
// classifier.
func (c Config) ClassifierConfig() openrouterx.Config {
	return c.build(c.ClassifierModel, c.ClassifierTemperature)
}

// HandlerConfig returns the OpenRouter config for one task handler.
func (c Config) HandlerConfig(agent statex.AgentName) openrouterx.Config {
	switch agent {
	case statex.AgentAvailability:
		return c.build(c.AvailabilityModel, c.AvailabilityTemperature)
	case statex.AgentBooking:
		return c.build(c.BookingModel, c.BookingTemperature)
	default:
		return c.build(c.GeneralModel, c.GeneralTemperature)
	}
}

func (c Config) build(modelOverride string, tempOverride float32) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	if v := strings.TrimSpace(modelOverride); v != "" {
		modelName = v
	}
	temp := c.Temperature
	if tempOverride >= 0 {
		temp = tempOverride
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
