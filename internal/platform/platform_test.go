package platform

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		baseURL string
		want    Platform
	}{
		{"https://api.z.ai/api/anthropic", ZAI},
		{"https://api.z.ai", ZAI},
		{"https://open.bigmodel.cn/api/anthropic", ZHIPU},
		{"https://dev.bigmodel.cn/api/anthropic", ZHIPU},
		{"http://dev.bigmodel.cn:8080/x", ZHIPU},
	}

	for _, tt := range tests {
		got, err := Classify(tt.baseURL)
		if err != nil {
			t.Errorf("Classify(%q) returned error: %v", tt.baseURL, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.baseURL, got, tt.want)
		}
	}
}

func TestClassify_Unrecognized(t *testing.T) {
	_, err := Classify("https://api.anthropic.com")
	if err == nil {
		t.Fatal("expected error for unrecognized base URL")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	joined := strings.Join(cfgErr.Hints, "\n")
	for _, u := range SupportedBaseURLs {
		if !strings.Contains(joined, u) {
			t.Errorf("hints should list %s, got %q", u, joined)
		}
	}
}

func TestClassify_BothMarkersPrefersZAI(t *testing.T) {
	urls := []string{
		"https://api.z.ai/proxy?upstream=open.bigmodel.cn",
		"https://api.z.ai/api/anthropic?mirror=open.bigmodel.cn",
		"https://api.z.ai.dev.bigmodel.cn/api/anthropic",
	}
	for _, u := range urls {
		p, err := Classify(u)
		if err != nil {
			t.Fatalf("Classify(%q) failed: %v", u, err)
		}
		if p != ZAI {
			t.Errorf("Classify(%q) = %s, want ZAI", u, p)
		}
	}
}

func TestResolve_Endpoints(t *testing.T) {
	target, err := Resolve(Credentials{
		AuthToken: "tok",
		BaseURL:   "https://open.bigmodel.cn/api/anthropic",
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if target.Platform != ZHIPU {
		t.Errorf("expected ZHIPU, got %s", target.Platform)
	}
	if target.AuthToken != "tok" {
		t.Errorf("expected token to be carried over, got %q", target.AuthToken)
	}

	want := Endpoints{
		ModelUsage:       "https://open.bigmodel.cn/api/monitor/usage/model-usage",
		ToolUsage:        "https://open.bigmodel.cn/api/monitor/usage/tool-usage",
		QuotaLimit:       "https://open.bigmodel.cn/api/monitor/usage/quota/limit",
		ModelPerformance: "https://open.bigmodel.cn/api/monitor/usage/model-performance",
	}
	if !reflect.DeepEqual(target.Endpoints, want) {
		t.Errorf("unexpected endpoints:\n got %+v\nwant %+v", target.Endpoints, want)
	}
}

func TestResolve_KeepsSchemeAndPort(t *testing.T) {
	target, err := Resolve(Credentials{AuthToken: "tok", BaseURL: "http://api.z.ai:8443/api/anthropic"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if target.Endpoints.QuotaLimit != "http://api.z.ai:8443/api/monitor/usage/quota/limit" {
		t.Errorf("unexpected quota endpoint: %s", target.Endpoints.QuotaLimit)
	}
}

func TestResolve_MissingInputs(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		msg   string
	}{
		{"missing token", Credentials{BaseURL: "https://api.z.ai/api/anthropic"}, "ANTHROPIC_AUTH_TOKEN"},
		{"missing base url", Credentials{AuthToken: "tok"}, "ANTHROPIC_BASE_URL"},
		{"both missing", Credentials{}, "ANTHROPIC_AUTH_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.creds)
			if err == nil {
				t.Fatal("expected error")
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if !strings.Contains(cfgErr.Message, tt.msg) {
				t.Errorf("expected message to mention %s, got %q", tt.msg, cfgErr.Message)
			}
			if len(cfgErr.Hints) == 0 {
				t.Error("expected remediation hints")
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	if DisplayName(ZAI) != "Z.ai" {
		t.Errorf("unexpected display name for ZAI: %s", DisplayName(ZAI))
	}
	if DisplayName(Platform("OTHER")) != "OTHER" {
		t.Errorf("unknown platforms should fall back to their ID")
	}
}
