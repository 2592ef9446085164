package yamlconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/myshadowbank/exolix-sdk/core"
)

const sampleConfig = `
exolix:
  base_url: https://exolix.example/api/v2
  api_key: secret-key
ledger:
  driver: sqlite3
  dsn: file:ledger.db
`

func TestParse_ReturnsSection(t *testing.T) {
	values, err := Parse([]byte(sampleConfig), DefaultSection)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if values["base_url"] != "https://exolix.example/api/v2" {
		t.Fatalf("unexpected base_url %v", values["base_url"])
	}
	if values["api_key"] != "secret-key" {
		t.Fatalf("unexpected api_key %v", values["api_key"])
	}

	ledger, err := Parse([]byte(sampleConfig), "ledger")
	if err != nil {
		t.Fatalf("parse ledger: %v", err)
	}
	if ledger["driver"] != "sqlite3" {
		t.Fatalf("unexpected ledger driver %v", ledger["driver"])
	}
}

func TestParse_MissingAndMalformedSections(t *testing.T) {
	values, err := Parse([]byte(sampleConfig), "absent")
	if err != nil || len(values) != 0 {
		t.Fatalf("expected empty values for a missing section, got %v (%v)", values, err)
	}
	if _, err := Parse([]byte("exolix: plain"), DefaultSection); err == nil {
		t.Fatalf("expected non-mapping section error")
	}
	if _, err := Parse([]byte("exolix: [unterminated"), DefaultSection); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFileLoader_FeedsClientConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exolix.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	client, err := core.NewClient(core.Config{},
		core.WithConfigProvider(core.NewCfgxConfigProvider(NewFileLoader(path, DefaultSection))),
		core.WithTransport(core.TransportFunc(func(context.Context, core.TransportRequest) (*core.TransportResponse, error) {
			return nil, nil
		})),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	cfg := client.Config()
	if cfg.BaseURL != "https://exolix.example/api/v2" {
		t.Fatalf("expected base url from yaml, got %q", cfg.BaseURL)
	}
	if cfg.APIKey != "secret-key" {
		t.Fatalf("expected api key from yaml")
	}
}

func TestFileLoader_Errors(t *testing.T) {
	if _, err := (&FileLoader{}).LoadRaw(context.Background()); err == nil {
		t.Fatalf("expected missing path error")
	}
	loader := NewFileLoader(filepath.Join(t.TempDir(), "missing.yaml"), DefaultSection)
	if _, err := loader.LoadRaw(context.Background()); err == nil {
		t.Fatalf("expected read error")
	}
}
