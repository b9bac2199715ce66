package discovery

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.CycleInterval != 5*time.Minute || cfg.ProductsPerCycle != 10 || cfg.KeywordsPerProduct != 2 || cfg.VideosPerKeyword != 5 {
		t.Fatalf("schedule defaults: %+v", cfg)
	}
	if cfg.MinScore != 5.0 || cfg.MinViews != 5000 {
		t.Fatalf("admission defaults: score=%v views=%d", cfg.MinScore, cfg.MinViews)
	}
	if cfg.VideoDelay != 4*time.Second || cfg.KeywordDelay != 2*time.Second || cfg.ProductDelay != time.Second {
		t.Fatalf("pacing defaults: %+v", cfg)
	}
}

func TestLoadConfigEnvAndFile(t *testing.T) {
	t.Setenv("WORKER_CYCLE_INTERVAL_MINUTES", "15")
	t.Setenv("WORKER_PRODUCTS_PER_CYCLE", "3")
	t.Setenv("DISCOVERY_MIN_SCORE", "4.0")
	t.Setenv("DISCOVERY_MIN_VIEWS", "1000")

	path := filepath.Join(t.TempDir(), "discovery.yaml")
	yml := "products_per_cycle: 7\nvideo_delay_seconds: 0.5\nkeywords_per_product: 20\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DISCOVERY_CONFIG_FILE", path)

	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.CycleInterval != 15*time.Minute {
		t.Fatalf("CycleInterval: want=15m got=%v", cfg.CycleInterval)
	}
	if cfg.ProductsPerCycle != 7 {
		t.Fatalf("ProductsPerCycle: file should win, got=%d", cfg.ProductsPerCycle)
	}
	if cfg.VideoDelay != 500*time.Millisecond {
		t.Fatalf("VideoDelay: got=%v", cfg.VideoDelay)
	}
	if cfg.KeywordsPerProduct != MaxKeywords {
		t.Fatalf("KeywordsPerProduct: want clamp to %d got=%d", MaxKeywords, cfg.KeywordsPerProduct)
	}
	if cfg.MinScore != 4.0 || cfg.MinViews != 1000 {
		t.Fatalf("admission: score=%v views=%d", cfg.MinScore, cfg.MinViews)
	}
}

func TestLoadConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("products_per_cycle: [oops"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DISCOVERY_CONFIG_FILE", path)
	if _, err := LoadConfig(logger.Nop()); err == nil {
		t.Fatalf("LoadConfig: want error for malformed yaml")
	}
}
