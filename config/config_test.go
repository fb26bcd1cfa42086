package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range []setting{userKey, appToken, websiteURLs, checkInterval, requestTimeout} {
		t.Setenv(s.env, "")
		os.Unsetenv(s.env)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PushoverUserKey", "user-env")
	t.Setenv("PushoverAppToken", "token-env")
	t.Setenv("WebsiteUrls", " https://ok.test , ,https://down.test,")
	t.Setenv("CheckInterval", "1")
	t.Setenv("RequestTimeout", "10")

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PushoverUserKey != "user-env" {
		t.Errorf("PushoverUserKey = %q, want user-env", cfg.PushoverUserKey)
	}
	if cfg.PushoverAppToken != "token-env" {
		t.Errorf("PushoverAppToken = %q, want token-env", cfg.PushoverAppToken)
	}
	wantURLs := []string{"https://ok.test", "https://down.test"}
	if !reflect.DeepEqual(cfg.URLs, wantURLs) {
		t.Errorf("URLs = %q, want %q", cfg.URLs, wantURLs)
	}
	if cfg.CheckInterval != time.Minute {
		t.Errorf("CheckInterval = %v, want 1m", cfg.CheckInterval)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("PushoverUserKey", "u")
	t.Setenv("PushoverAppToken", "t")
	t.Setenv("WebsiteUrls", "https://ok.test")

	cfg, err := Load(Options{SettingsPath: filepath.Join(t.TempDir(), "missing.json")})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CheckInterval != DefaultCheckInterval {
		t.Errorf("CheckInterval = %v, want %v", cfg.CheckInterval, DefaultCheckInterval)
	}
	if cfg.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("RequestTimeout = %v, want %v", cfg.RequestTimeout, DefaultRequestTimeout)
	}
}

const settingsJSON = `{
  "Pushover": {
    "UserKey": "user-file",
    "AppToken": "token-file"
  },
  "Website": {
    "Urls": "https://a.test, https://b.test",
    "CheckInterval": 2,
    "RequestTimeout": 0
  }
}`

func TestLoadFromSettingsFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "appsettings.json", settingsJSON)

	cfg, err := Load(Options{SettingsPath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PushoverUserKey != "user-file" || cfg.PushoverAppToken != "token-file" {
		t.Errorf("credentials = %q/%q, want user-file/token-file", cfg.PushoverUserKey, cfg.PushoverAppToken)
	}
	wantURLs := []string{"https://a.test", "https://b.test"}
	if !reflect.DeepEqual(cfg.URLs, wantURLs) {
		t.Errorf("URLs = %q, want %q", cfg.URLs, wantURLs)
	}
	if cfg.CheckInterval != 2*time.Minute {
		t.Errorf("CheckInterval = %v, want 2m", cfg.CheckInterval)
	}
	if cfg.RequestTimeout != 0 {
		t.Errorf("RequestTimeout = %v, want 0", cfg.RequestTimeout)
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	settings := writeFile(t, "appsettings.json", settingsJSON)
	secrets := writeFile(t, "secrets.json", `{
  "Pushover:UserKey": "user-secret",
  "Pushover:AppToken": "token-secret"
}`)
	t.Setenv("PushoverAppToken", "token-env")
	t.Setenv("WebsiteUrls", "https://env.test")
	t.Setenv("CheckInterval", "not-a-number")

	cfg, err := Load(Options{SettingsPath: settings, SecretsPath: secrets})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PushoverUserKey != "user-secret" {
		t.Errorf("PushoverUserKey = %q, want secrets value over settings", cfg.PushoverUserKey)
	}
	if cfg.PushoverAppToken != "token-env" {
		t.Errorf("PushoverAppToken = %q, want environment value", cfg.PushoverAppToken)
	}
	if !reflect.DeepEqual(cfg.URLs, []string{"https://env.test"}) {
		t.Errorf("URLs = %q, want environment value", cfg.URLs)
	}
	if cfg.CheckInterval != 2*time.Minute {
		t.Errorf("CheckInterval = %v, want file value when env is unparsable", cfg.CheckInterval)
	}
}

func TestLoadURLSequence(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "appsettings.yaml", `
pushover:
  userkey: u
  apptoken: t
website:
  urls:
    - https://one.test
    - " https://two.test "
    - ""
`)

	cfg, err := Load(Options{SettingsPath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"https://one.test", "https://two.test"}
	if !reflect.DeepEqual(cfg.URLs, want) {
		t.Errorf("URLs = %q, want %q", cfg.URLs, want)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		settings string
		wantErr  []string
	}{
		{
			name:    "nothing configured",
			wantErr: []string{"Pushover:UserKey", "Pushover:AppToken", "Website:Urls"},
		},
		{
			name:    "only separators in url list",
			env:     map[string]string{"PushoverUserKey": "u", "PushoverAppToken": "t", "WebsiteUrls": " , ,"},
			wantErr: []string{"Website:Urls"},
		},
		{
			name:    "zero interval",
			env:     map[string]string{"PushoverUserKey": "u", "PushoverAppToken": "t", "WebsiteUrls": "https://a.test", "CheckInterval": "0"},
			wantErr: []string{"CheckInterval must be a positive"},
		},
		{
			name:    "negative timeout",
			env:     map[string]string{"PushoverUserKey": "u", "PushoverAppToken": "t", "WebsiteUrls": "https://a.test", "RequestTimeout": "-1"},
			wantErr: []string{"RequestTimeout must not be negative"},
		},
		{
			name:     "bad interval in file",
			env:      map[string]string{"PushoverUserKey": "u", "PushoverAppToken": "t", "WebsiteUrls": "https://a.test"},
			settings: `{"Website": {"CheckInterval": "soon"}}`,
			wantErr:  []string{"Website:CheckInterval", "not an integer"},
		},
		{
			name:     "malformed settings file",
			settings: `{"Pushover": [`,
			wantErr:  []string{"error parsing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			var opts Options
			if tt.settings != "" {
				opts.SettingsPath = writeFile(t, "appsettings.json", tt.settings)
			}

			cfg, err := Load(opts)
			if err == nil {
				t.Fatalf("Load() = %+v, want error", cfg)
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
		})
	}
}

func TestSplitURLs(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: nil},
		{raw: "https://a.test", want: []string{"https://a.test"}},
		{raw: "https://a.test,https://b.test", want: []string{"https://a.test", "https://b.test"}},
		{raw: "  https://a.test  ,\thttps://b.test\n", want: []string{"https://a.test", "https://b.test"}},
		{raw: ",,https://a.test,,", want: []string{"https://a.test"}},
	}

	for _, tt := range tests {
		if got := SplitURLs(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitURLs(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
