package bootstrap

import (
	"strings"
	"testing"
	"time"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:           "mongodb://localhost:27017",
		BaseDomain:         "civickey.ca",
		Timezone:           "America/Montreal",
		DomainCacheBackend: "memory",
		IdleTimeout:        15 * time.Minute,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		want   string // substring of the error, "" for valid
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"bad mongo uri", func(c *AppConfig) { c.MongoURI = "" }, "MongoDB URI"},
		{"no base domain", func(c *AppConfig) { c.BaseDomain = "" }, "base_domain"},
		{"bad timezone", func(c *AppConfig) { c.Timezone = "Mars/Olympus" }, "timezone"},
		{"unknown cache backend", func(c *AppConfig) { c.DomainCacheBackend = "memcached" }, "domain_cache_backend"},
		{"redis cache without redis", func(c *AppConfig) { c.DomainCacheBackend = "redis" }, "redis_addr"},
		{"redis cache with redis", func(c *AppConfig) { c.DomainCacheBackend = "redis"; c.RedisAddr = "localhost:6379" }, ""},
		{"push without redis", func(c *AppConfig) { c.PushEnabled = true }, "push_enabled"},
		{"zero idle timeout", func(c *AppConfig) { c.IdleTimeout = 0 }, "idle_timeout"},
		{"negative timeout", func(c *AppConfig) { c.Timeouts.Medium = -time.Second }, "timeouts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(nil, cfg, testLogger())
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.ca, ,https://b.ca ,")
	if len(got) != 2 || got[0] != "https://a.ca" || got[1] != "https://b.ca" {
		t.Errorf("splitList = %q", got)
	}
	if splitList("") != nil {
		t.Error("empty input should give nil")
	}
}
