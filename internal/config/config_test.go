package config

import (
	"testing"
	"time"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("defaults should load cleanly: %v", err)
	}
	if cfg.MatchRadiusKm != 5.0 {
		t.Fatalf("expected 5 km default radius, got %f", cfg.MatchRadiusKm)
	}
	if cfg.MaxPairAgeGap != 0 {
		t.Fatalf("age-gap rule must default to off, got %v", cfg.MaxPairAgeGap)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Fatalf("expected 30s poll interval, got %v", cfg.PollInterval)
	}
}

func TestLoadServerConfigRejectsBadValues(t *testing.T) {
	t.Setenv("MATCH_RADIUS_KM", "-1")
	if _, err := LoadServerConfig(); err == nil {
		t.Fatal("expected error for non-positive radius")
	}

	t.Setenv("MATCH_RADIUS_KM", "not-a-number")
	if _, err := LoadServerConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadServerConfigKafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " b1:9092, b2:9092 ,")
	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "b1:9092" || cfg.KafkaBrokers[1] != "b2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
}
