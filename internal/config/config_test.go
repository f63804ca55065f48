package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Alias1177/Recommender/internal/guard"
	"github.com/Alias1177/Recommender/models"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TWELVE_API_KEY", "twelve")
	t.Setenv("OPENAI_API_KEY", "openai")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("TICKERS", " aapl, msft ,,7203 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Interval != "1day" || cfg.Lookback != 120 || cfg.Style != "balanced" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if want := []string{"AAPL", "MSFT", "7203"}; !reflect.DeepEqual(cfg.Tickers, want) {
		t.Errorf("Tickers = %v, want %v", cfg.Tickers, want)
	}
	if !reflect.DeepEqual(cfg.Thresholds, guard.DefaultTable()) {
		t.Errorf("Thresholds = %v, want the built-in table", cfg.Thresholds)
	}
	if got := cfg.Profile(); got != models.DefaultRiskProfile() {
		t.Errorf("Profile() = %+v, want default", got)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("RISK_STYLE", "aggressive")
	t.Setenv("RISK_PERIOD", "long")
	t.Setenv("LOOKBACK_DAYS", "200")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("MARKET_CRASH_PCT", "-10")
	t.Setenv("SECTOR_SYMBOLS", "Technology=xlk, Energy = XLE,broken")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile().Style != models.StyleAggressive || cfg.Profile().Period != models.PeriodLong {
		t.Errorf("Profile() = %+v", cfg.Profile())
	}
	if cfg.Lookback != 200 || cfg.TelegramChatID != -100123 || cfg.CrashPct != -10 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if want := map[string]string{"Technology": "XLK", "Energy": "XLE"}; !reflect.DeepEqual(cfg.SectorSymbols, want) {
		t.Errorf("SectorSymbols = %v, want %v", cfg.SectorSymbols, want)
	}
	if want := []string{"kafka-1:9092", "kafka-2:9092"}; !reflect.DeepEqual(cfg.KafkaBrokers, want) {
		t.Errorf("KafkaBrokers = %v, want %v", cfg.KafkaBrokers, want)
	}
	if cfg.KafkaTopic != "recommendations" {
		t.Errorf("KafkaTopic = %q", cfg.KafkaTopic)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing api key", map[string]string{"OPENAI_API_KEY": "x"}},
		{"unknown style", map[string]string{"TWELVE_API_KEY": "x", "OPENAI_API_KEY": "x", "RISK_STYLE": "reckless"}},
		{"short lookback", map[string]string{"TWELVE_API_KEY": "x", "OPENAI_API_KEY": "x", "LOOKBACK_DAYS": "30"}},
		{"bad interval", map[string]string{"TWELVE_API_KEY": "x", "OPENAI_API_KEY": "x", "INTERVAL": "5min"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TWELVE_API_KEY", "")
			t.Setenv("OPENAI_API_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load() error = nil, want validation error")
			}
		})
	}
}

func TestLoad_ThresholdsFile(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	doc := "conservative:\n  surge_pct: 15\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("THRESHOLDS_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	row := cfg.Thresholds[models.StyleConservative]
	if row.SurgePct != 15 || row.DeclinePct != -15 || row.OverheatPct != 8 {
		t.Errorf("conservative row = %+v", row)
	}
}

func TestParseThresholds(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
		check   func(guard.Table) bool
	}{
		{
			name:  "empty document keeps defaults",
			doc:   "",
			check: func(tb guard.Table) bool { return reflect.DeepEqual(tb, guard.DefaultTable()) },
		},
		{
			name: "partial row",
			doc:  "balanced:\n  overheat_pct: 12\n  surge_disabled: true\n",
			check: func(tb guard.Table) bool {
				row := tb[models.StyleBalanced]
				return row.OverheatPct == 12 && row.SurgeDisabled && row.PanicPct == -20
			},
		},
		{name: "unknown style", doc: "yolo:\n  panic_pct: -5\n", wantErr: "unknown style"},
		{name: "positive decline", doc: "balanced:\n  decline_pct: 5\n", wantErr: "DeclinePct"},
		{name: "surge enabled without a limit", doc: "aggressive:\n  surge_disabled: false\n", wantErr: "SurgePct"},
		{name: "zero surge limit", doc: "balanced:\n  surge_pct: 0\n", wantErr: "SurgePct"},
		{name: "negative surge limit", doc: "aggressive:\n  surge_pct: -5\n", wantErr: "SurgePct"},
		{
			name: "surge enabled with a limit",
			doc:  "aggressive:\n  surge_disabled: false\n  surge_pct: 40\n",
			check: func(tb guard.Table) bool {
				row := tb[models.StyleAggressive]
				return !row.SurgeDisabled && row.SurgePct == 40
			},
		},
		{
			name:  "zero surge limit when disabled",
			doc:   "balanced:\n  surge_pct: 0\n  surge_disabled: true\n",
			check: func(tb guard.Table) bool { return tb[models.StyleBalanced].SurgeDisabled },
		},
		{name: "not yaml", doc: "balanced: [", wantErr: "parsing thresholds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseThresholds([]byte(tt.doc))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ParseThresholds() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseThresholds() error = %v", err)
			}
			if !tt.check(table) {
				t.Errorf("unexpected table %+v", table)
			}
		})
	}
}
