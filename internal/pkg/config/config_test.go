package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("reproj-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transform.DefaultTargetCRS != "EPSG:4326" {
		t.Errorf("expected EPSG:4326 default target, got %s", cfg.Transform.DefaultTargetCRS)
	}
	if cfg.Transform.Engine != EnginePure || cfg.Transform.RegistrySource != RegistryBuiltin {
		t.Errorf("unexpected transform defaults %+v", cfg.Transform)
	}
	if cfg.Telemetry.ServiceName != "reproj-test" {
		t.Errorf("expected service name from Load, got %s", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("REPROJ_TRANSFORM_ENGINE", "libproj")
	t.Setenv("REPROJ_SERVER_PORT", "9090")

	cfg, err := Load("reproj-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transform.Engine != EngineLibPROJ {
		t.Errorf("expected libproj, got %s", cfg.Transform.Engine)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10, BodyLimit: 1024},
		Valkey:    ValkeyConfig{TTLSeconds: 60},
		Transform: TransformConfig{DefaultTargetCRS: "EPSG:4326", Engine: EnginePure, RegistrySource: RegistryBuiltin, SRCacheSize: 16},
		Temporal:  TemporalConfig{ChunkSize: 10},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad engine", func(c *Config) { c.Transform.Engine = "gdal" }, "transform.engine"},
		{"bad source", func(c *Config) { c.Transform.RegistrySource = "file" }, "transform.registry_source"},
		{"postgis needs database", func(c *Config) { c.Transform.RegistrySource = RegistryPostGIS }, "database.host"},
		{"disabled nats unchecked", func(c *Config) { c.NATS.URL = "" }, ""},
		{"enabled nats checked", func(c *Config) { c.NATS.Enabled = true }, "nats.url"},
		{"enabled temporal checked", func(c *Config) { c.Temporal.Enabled = true }, "temporal.host_port"},
		{"empty default target", func(c *Config) { c.Transform.DefaultTargetCRS = "" }, "default_target_crs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	c := validConfig()
	c.Server.Port = -1
	c.Transform.SRCacheSize = 0
	err := c.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "server.port") || !strings.Contains(err.Error(), "sr_cache_size") {
		t.Errorf("expected both problems reported, got %v", err)
	}
}
