package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("KEYSTORE_DRIVER", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != defaultBaseURL {
		t.Errorf("expected base url %s, got %s", defaultBaseURL, cfg.BaseURL)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Errorf("expected timeout %v, got %v", defaultRequestTimeout, cfg.RequestTimeout)
	}
	if cfg.KeystoreDriver != "file" {
		t.Errorf("expected file keystore, got %s", cfg.KeystoreDriver)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("KEYSTORE_DRIVER", "")
	path := filepath.Join(t.TempDir(), ".env")
	body := "API_BASE_URL=http://10.0.2.2:9000/api\nREQUEST_TIMEOUT=3s\nKEYSTORE_DRIVER=memory\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv.Load never overrides variables that are already set
	os.Unsetenv("API_BASE_URL")
	os.Unsetenv("REQUEST_TIMEOUT")
	os.Unsetenv("KEYSTORE_DRIVER")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "http://10.0.2.2:9000/api" {
		t.Errorf("unexpected base url %s", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("unexpected timeout %v", cfg.RequestTimeout)
	}
	if cfg.KeystoreDriver != "memory" {
		t.Errorf("unexpected driver %s", cfg.KeystoreDriver)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad timeout", map[string]string{"REQUEST_TIMEOUT": "soon"}},
		{"unknown driver", map[string]string{"KEYSTORE_DRIVER": "redis"}},
		{"postgres without url", map[string]string{"KEYSTORE_DRIVER": "postgres", "DATABASE_URL": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REQUEST_TIMEOUT", "")
			t.Setenv("KEYSTORE_DRIVER", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
