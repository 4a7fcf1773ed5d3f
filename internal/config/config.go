package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName string
	AppEnv  string
	AppPort string

	HuggingFaceAPIKey    string
	InferenceBaseURL     string
	InferenceMinInterval time.Duration
	InferenceCacheSize   int

	TextGenerationModel     string
	SentimentAnalysisModel  string
	TextSummarizationModel  string
	QuestionAnsweringModel  string
	TextClassificationModel string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional
// .env file. The inference API key is not required at load time; the client
// checks it lazily so the rest of the service stays usable without one.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADECRAFT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GradeCraft API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("inference.base_url", "https://api-inference.huggingface.co/models")
	v.SetDefault("inference.min_interval", "1s")
	v.SetDefault("inference.cache_size", 100)
	v.SetDefault("model.text_generation", "microsoft/DialoGPT-medium")
	v.SetDefault("model.sentiment_analysis", "cardiffnlp/twitter-roberta-base-sentiment-latest")
	v.SetDefault("model.text_summarization", "facebook/bart-large-cnn")
	v.SetDefault("model.question_answering", "deepset/roberta-base-squad2")
	v.SetDefault("model.text_classification", "facebook/bart-large-mnli")

	intervalString := v.GetString("inference.min_interval")
	if intervalString == "" {
		intervalString = "1s"
	}

	interval, err := time.ParseDuration(intervalString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid inference min interval: %w", err)
	}

	cfg := Config{
		AppName:                 v.GetString("app.name"),
		AppEnv:                  v.GetString("app.env"),
		AppPort:                 v.GetString("app.port"),
		HuggingFaceAPIKey:       v.GetString("huggingface_api_key"),
		InferenceBaseURL:        v.GetString("inference.base_url"),
		InferenceMinInterval:    interval,
		InferenceCacheSize:      v.GetInt("inference.cache_size"),
		TextGenerationModel:     v.GetString("model.text_generation"),
		SentimentAnalysisModel:  v.GetString("model.sentiment_analysis"),
		TextSummarizationModel:  v.GetString("model.text_summarization"),
		QuestionAnsweringModel:  v.GetString("model.question_answering"),
		TextClassificationModel: v.GetString("model.text_classification"),
	}

	if cfg.InferenceCacheSize <= 0 {
		cfg.InferenceCacheSize = 100
	}

	return cfg, nil
}
