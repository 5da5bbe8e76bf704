package platform

import (
	"fmt"
	"net/url"
	"strings"
)

// Platform identifies which backend a base URL points at.
type Platform string

const (
	ZAI   Platform = "ZAI"
	ZHIPU Platform = "ZHIPU"
)

const (
	modelUsagePath       = "/api/monitor/usage/model-usage"
	toolUsagePath        = "/api/monitor/usage/tool-usage"
	quotaLimitPath       = "/api/monitor/usage/quota/limit"
	modelPerformancePath = "/api/monitor/usage/model-performance"
)

// Supported base URLs, shown to the user when the configured one is not recognised.
var SupportedBaseURLs = []string{
	"https://api.z.ai/api/anthropic",
	"https://open.bigmodel.cn/api/anthropic",
}

// Credentials are the two required inputs of a run.
type Credentials struct {
	AuthToken string
	BaseURL   string
}

type Endpoints struct {
	ModelUsage       string `json:"model_usage"`
	ToolUsage        string `json:"tool_usage"`
	QuotaLimit       string `json:"quota_limit"`
	ModelPerformance string `json:"model_performance"`
}

// Target is a fully resolved backend: which platform, and where its monitor API lives.
type Target struct {
	Platform  Platform
	AuthToken string
	Endpoints Endpoints
}

// ConfigError is returned for missing or unusable configuration. Hints are
// remediation lines meant for the user.
type ConfigError struct {
	Message string
	Hints   []string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// Resolve validates the credentials and derives the monitor endpoints.
func Resolve(creds Credentials) (*Target, error) {
	return defaultRegistry.Resolve(creds)
}

// Classify reports which platform a base URL belongs to.
func Classify(baseURL string) (Platform, error) {
	return defaultRegistry.Classify(baseURL)
}

func (r *Registry) Resolve(creds Credentials) (*Target, error) {
	if creds.AuthToken == "" {
		return nil, &ConfigError{
			Message: "ANTHROPIC_AUTH_TOKEN is not set",
			Hints: []string{
				"Set the environment variable and retry:",
				`  export ANTHROPIC_AUTH_TOKEN="your-token-here"`,
			},
		}
	}
	if creds.BaseURL == "" {
		hints := []string{"Set the environment variable and retry:"}
		for i, u := range SupportedBaseURLs {
			if i > 0 {
				hints = append(hints, "  or")
			}
			hints = append(hints, fmt.Sprintf(`  export ANTHROPIC_BASE_URL="%s"`, u))
		}
		return nil, &ConfigError{
			Message: "ANTHROPIC_BASE_URL is not set",
			Hints:   hints,
		}
	}

	p, err := r.Classify(creds.BaseURL)
	if err != nil {
		return nil, err
	}

	endpoints, err := deriveEndpoints(creds.BaseURL)
	if err != nil {
		return nil, err
	}

	return &Target{
		Platform:  p,
		AuthToken: creds.AuthToken,
		Endpoints: *endpoints,
	}, nil
}

// Classify returns the platform whose markers appear in baseURL. When several
// platforms match, the one with the lowest Precedence wins.
func (r *Registry) Classify(baseURL string) (Platform, error) {
	for _, def := range r.byPrecedence() {
		if def.Matches(baseURL) {
			return def.ID, nil
		}
	}

	hints := []string{"Supported values:"}
	for _, u := range SupportedBaseURLs {
		hints = append(hints, "  - "+u)
	}
	return "", &ConfigError{
		Message: fmt.Sprintf("unrecognized ANTHROPIC_BASE_URL: %s", baseURL),
		Hints:   hints,
	}
}

func deriveEndpoints(baseURL string) (*Endpoints, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("invalid ANTHROPIC_BASE_URL %q: %v", baseURL, err)}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &ConfigError{Message: fmt.Sprintf("invalid ANTHROPIC_BASE_URL %q: missing scheme or host", baseURL)}
	}

	base := u.Scheme + "://" + u.Host
	return &Endpoints{
		ModelUsage:       base + modelUsagePath,
		ToolUsage:        base + toolUsagePath,
		QuotaLimit:       base + quotaLimitPath,
		ModelPerformance: base + modelPerformancePath,
	}, nil
}

// Definition describes a known platform and the base URL markers that select it.
type Definition struct {
	ID          Platform
	DisplayName string
	Markers     []string

	// Precedence orders classification; lower is checked first.
	Precedence int
}

func (d Definition) Matches(baseURL string) bool {
	for _, m := range d.Markers {
		if strings.Contains(baseURL, m) {
			return true
		}
	}
	return false
}
