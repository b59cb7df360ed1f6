package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
name: test-dashboard
host: 127.0.0.1
port: 8422
log_level: INFO
gateway:
  host: 127.0.0.1
  port: 7497
  client_id: 7
  readonly: true
market:
  future_symbol: ES
  future_exchange: CME
  index_symbol: SPX
  index_exchange: CBOE
  trading_class: E2B
  option_exchanges: [CME, GLOBEX]
engine:
  update_interval_seconds: 10
  reconnect_backoff_seconds: 30
  reselect_points: 10
  ring_capacity: 300
schedule:
  timezone: Europe/Rome
  morning_snapshot: "10:00"
  afternoon_snapshot: "15:30"
  late_snapshot: "15:45"
storage:
  db_type: sqlite
  db_path: test.db
  retention_days: 30
  tick_csv_path: ticks.csv
  snapshot_csv_path: snaps.csv
network:
  timeout: 10
  retries: 3
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Market.FutureSymbol != "ES" || cfg.Market.TradingClass != "E2B" {
		t.Fatalf("market config = %+v", cfg.Market)
	}
	if cfg.Engine.UpdateIntervalSeconds != 10 {
		t.Fatalf("interval = %d, want 10", cfg.Engine.UpdateIntervalSeconds)
	}
	if loc := cfg.Location(); loc.String() != "Europe/Rome" {
		t.Fatalf("location = %v", loc)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("IB_PORT", "4002")
	t.Setenv("IB_CLIENT_ID", "42")

	cfg, err := NewConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gateway.Port != 4002 || cfg.Gateway.ClientID != 42 {
		t.Fatalf("gateway overrides not applied: %+v", cfg.Gateway)
	}
}

func TestValidateRejectsBadSchedule(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("baseline load: %v", err)
	}

	cfg.Schedule.MorningSnap = "25:99"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for invalid schedule time")
	}

	cfg.Schedule.MorningSnap = "10:00"
	cfg.Schedule.Timezone = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for invalid timezone")
	}
}

func TestValidateRejectsMissingMarket(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("baseline load: %v", err)
	}
	cfg.Market.OptionExchanges = nil
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for empty option exchanges")
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("15:30")
	if err != nil || h != 15 || m != 30 {
		t.Fatalf("got %d:%d (%v), want 15:30", h, m, err)
	}
	if _, _, err := ParseClock("noon"); err == nil {
		t.Fatalf("expected error for malformed time")
	}
}
