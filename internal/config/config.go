package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration for the soccer news job.
type Config struct {
	OpenAIAPIKey      string
	OpenAIModel       string
	BrowserLambdaARN  string
	SNSTopicARN       string
	WebhookURL        string
	CompetitionsPath  string
	StandingsPath     string
	ReportConcurrency int
	Timezone          string
	LLMTemperature    float64
	LLMMaxTokens      int
	MaxHTMLChars      int
}

// FromEnv creates a configuration instance sourced from environment variables.
// Missing required keys (credentials, worker ARN, topic ARN) fail immediately
// so a misconfigured job aborts before any fetching starts.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       envOrDefault("OPENAI_MODEL", "gpt-4o"),
		BrowserLambdaARN:  os.Getenv("BROWSER_LAMBDA_ARN"),
		SNSTopicARN:       os.Getenv("SNS_TOPIC_ARN"),
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		CompetitionsPath:  envOrDefault("COMPETITIONS_PATH", "data/competitions.txt"),
		StandingsPath:     envOrDefault("STANDINGS_PATH", "data/standings_urls.txt"),
		ReportConcurrency: intEnvOrDefault("REPORT_CONCURRENCY", 10),
		Timezone:          envOrDefault("TIMEZONE", "America/Los_Angeles"),
		LLMTemperature:    floatEnvOrDefault("LLM_TEMPERATURE", 0.2),
		LLMMaxTokens:      intEnvOrDefault("LLM_MAX_TOKENS", 2000),
		MaxHTMLChars:      intEnvOrDefault("MAX_HTML_CHARS", 50000),
	}

	required := []struct {
		key   string
		value string
	}{
		{"OPENAI_API_KEY", cfg.OpenAIAPIKey},
		{"BROWSER_LAMBDA_ARN", cfg.BrowserLambdaARN},
		{"SNS_TOPIC_ARN", cfg.SNSTopicARN},
	}
	for _, req := range required {
		if req.value == "" {
			return Config{}, fmt.Errorf("config: %s environment variable is not set", req.key)
		}
	}

	return cfg, nil
}

// LoadCompetitions reads the competition allow-list: one competition name per
// line, blank lines and '#' comments ignored.
func LoadCompetitions(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("load competitions %s: %w", path, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("load competitions %s: file contains no competitions", path)
	}
	return lines, nil
}

// LoadStandingsURLs reads the competition-to-standings-page mapping, one
// "Competition|URL" pair per line.
func LoadStandingsURLs(path string) (map[string]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("load standings urls %s: %w", path, err)
	}

	urls := make(map[string]string, len(lines))
	for i, line := range lines {
		name, url, ok := strings.Cut(line, "|")
		name = strings.TrimSpace(name)
		url = strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("load standings urls %s: malformed entry on line %d", path, i+1)
		}
		urls[name] = url
	}
	return urls, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intEnvOrDefault(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return fallback
	}
	return val
}

func floatEnvOrDefault(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return val
}
