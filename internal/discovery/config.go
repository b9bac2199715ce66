package discovery

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/maatchaa/maatchaa-backend/internal/pkg/envutil"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

// Config is the immutable schedule and admission policy for a Worker.
type Config struct {
	CycleInterval     time.Duration
	RecoveryDelay     time.Duration
	EmptyCatalogDelay time.Duration
	VideoDelay        time.Duration
	KeywordDelay      time.Duration
	ProductDelay      time.Duration
	CallTimeout       time.Duration

	ProductsPerCycle   int
	KeywordsPerProduct int
	VideosPerKeyword   int
	PublishedAfterDays int
	SearchOrder        string

	MinScore float64
	MinViews int64

	// Namespace for creator video vectors.
	VectorNamespace string
}

func DefaultConfig() Config {
	return Config{
		CycleInterval:      5 * time.Minute,
		RecoveryDelay:      30 * time.Minute,
		EmptyCatalogDelay:  30 * time.Minute,
		VideoDelay:         4 * time.Second,
		KeywordDelay:       2 * time.Second,
		ProductDelay:       1 * time.Second,
		CallTimeout:        60 * time.Second,
		ProductsPerCycle:   10,
		KeywordsPerProduct: 2,
		VideosPerKeyword:   5,
		PublishedAfterDays: 30,
		SearchOrder:        "viewCount",
		MinScore:           DefaultMinScore,
		MinViews:           DefaultMinViews,
		VectorNamespace:    "creator_videos",
	}
}

// fileConfig is the optional YAML override. Unset keys keep the env value.
type fileConfig struct {
	CycleIntervalMinutes *int     `yaml:"cycle_interval_minutes"`
	RecoveryDelayMinutes *int     `yaml:"recovery_delay_minutes"`
	VideoDelaySeconds    *float64 `yaml:"video_delay_seconds"`
	KeywordDelaySeconds  *float64 `yaml:"keyword_delay_seconds"`
	ProductDelaySeconds  *float64 `yaml:"product_delay_seconds"`
	CallTimeoutSeconds   *int     `yaml:"call_timeout_seconds"`
	ProductsPerCycle     *int     `yaml:"products_per_cycle"`
	KeywordsPerProduct   *int     `yaml:"keywords_per_product"`
	VideosPerKeyword     *int     `yaml:"videos_per_keyword"`
	PublishedAfterDays   *int     `yaml:"published_after_days"`
	MinScore             *float64 `yaml:"min_score"`
	MinViews             *int64   `yaml:"min_views"`
	VectorNamespace      *string  `yaml:"vector_namespace"`
}

// LoadConfig reads the worker schedule from env, then applies the YAML file
// named by DISCOVERY_CONFIG_FILE if set.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := DefaultConfig()
	cfg.CycleInterval = time.Duration(envutil.GetEnvAsInt("WORKER_CYCLE_INTERVAL_MINUTES", 5, log)) * time.Minute
	cfg.ProductsPerCycle = envutil.GetEnvAsInt("WORKER_PRODUCTS_PER_CYCLE", cfg.ProductsPerCycle, log)
	cfg.KeywordsPerProduct = envutil.GetEnvAsInt("WORKER_KEYWORDS_PER_PRODUCT", cfg.KeywordsPerProduct, log)
	cfg.VideosPerKeyword = envutil.GetEnvAsInt("WORKER_VIDEOS_PER_KEYWORD", cfg.VideosPerKeyword, log)
	cfg.CallTimeout = time.Duration(envutil.GetEnvAsInt("WORKER_CALL_TIMEOUT_SECONDS", 60, log)) * time.Second
	cfg.MinScore = envutil.GetEnvAsFloat("DISCOVERY_MIN_SCORE", cfg.MinScore, log)
	cfg.MinViews = int64(envutil.GetEnvAsInt("DISCOVERY_MIN_VIEWS", int(cfg.MinViews), log))
	cfg.VectorNamespace = envutil.GetEnv("DISCOVERY_VECTOR_NAMESPACE", cfg.VectorNamespace, log)

	if path := envutil.GetEnv("DISCOVERY_CONFIG_FILE", "", log); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read discovery config %s: %w", path, err)
		}
		if err := cfg.applyYAML(raw); err != nil {
			return Config{}, fmt.Errorf("parse discovery config %s: %w", path, err)
		}
	}
	return cfg.normalized(), nil
}

func (c *Config) applyYAML(raw []byte) error {
	var f fileConfig
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return err
	}
	minutes := func(dst *time.Duration, v *int) {
		if v != nil {
			*dst = time.Duration(*v) * time.Minute
		}
	}
	seconds := func(dst *time.Duration, v *float64) {
		if v != nil {
			*dst = time.Duration(*v * float64(time.Second))
		}
	}
	ints := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	minutes(&c.CycleInterval, f.CycleIntervalMinutes)
	minutes(&c.RecoveryDelay, f.RecoveryDelayMinutes)
	seconds(&c.VideoDelay, f.VideoDelaySeconds)
	seconds(&c.KeywordDelay, f.KeywordDelaySeconds)
	seconds(&c.ProductDelay, f.ProductDelaySeconds)
	if f.CallTimeoutSeconds != nil {
		c.CallTimeout = time.Duration(*f.CallTimeoutSeconds) * time.Second
	}
	ints(&c.ProductsPerCycle, f.ProductsPerCycle)
	ints(&c.KeywordsPerProduct, f.KeywordsPerProduct)
	ints(&c.VideosPerKeyword, f.VideosPerKeyword)
	ints(&c.PublishedAfterDays, f.PublishedAfterDays)
	if f.MinScore != nil {
		c.MinScore = *f.MinScore
	}
	if f.MinViews != nil {
		c.MinViews = *f.MinViews
	}
	if f.VectorNamespace != nil {
		c.VectorNamespace = *f.VectorNamespace
	}
	return nil
}

// normalized replaces non-positive counts with defaults. Delays may be zero.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.CycleInterval <= 0 {
		c.CycleInterval = d.CycleInterval
	}
	if c.ProductsPerCycle <= 0 {
		c.ProductsPerCycle = d.ProductsPerCycle
	}
	if c.KeywordsPerProduct <= 0 {
		c.KeywordsPerProduct = d.KeywordsPerProduct
	}
	if c.KeywordsPerProduct > MaxKeywords {
		c.KeywordsPerProduct = MaxKeywords
	}
	if c.VideosPerKeyword <= 0 {
		c.VideosPerKeyword = d.VideosPerKeyword
	}
	if c.PublishedAfterDays <= 0 {
		c.PublishedAfterDays = d.PublishedAfterDays
	}
	if c.SearchOrder == "" {
		c.SearchOrder = d.SearchOrder
	}
	if c.MinScore < 0 {
		c.MinScore = 0
	}
	if c.MinScore > MaxScore {
		c.MinScore = MaxScore
	}
	if c.MinViews < 0 {
		c.MinViews = 0
	}
	if c.VectorNamespace == "" {
		c.VectorNamespace = d.VectorNamespace
	}
	return c
}
