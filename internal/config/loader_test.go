package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", `addr: ":9999"
models_dir: /tmp/models
watch: true
max_inflight: 8
max_wait: 2s
history_db: /tmp/h.db
cors:
  enabled: true
  origins: [http://a, http://b]
log:
  level: debug
  format: json
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.ModelsDir != "/tmp/models" || !cfg.Watch || cfg.MaxInflight != 8 || cfg.HistoryDB != "/tmp/h.db" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if !cfg.CORS.Enabled || len(cfg.CORS.Origins) != 2 || cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected nested cfg: %+v", cfg)
	}
	if d, err := cfg.MaxWaitDuration(); err != nil || d != 2*time.Second {
		t.Fatalf("max_wait=%v err=%v", d, err)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","models_dir":"/m","cache_size":-1,"max_body_bytes":2048,"log":{"request":"info"}}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.ModelsDir != "/m" || cfg.CacheSize != -1 || cfg.MaxBodyBytes != 2048 || cfg.Log.Request != "info" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nmodels_dir=\"/x\"\nmax_queue_depth=9\npredict_timeout=\"500ms\"\n\n[log]\nfile=\"/var/log/predictd.log\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.ModelsDir != "/x" || cfg.MaxQueueDepth != 9 || cfg.Log.File != "/var/log/predictd.log" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if d, _ := cfg.PredictTimeoutDuration(); d != 500*time.Millisecond {
		t.Fatalf("predict_timeout=%v", d)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	if _, err := Load("/definitely/not/a/real/file-12345.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
	bad := map[string]string{
		"bad.yaml": "addr: :8080\n: broken\n",
		"bad.json": `{ "addr": ":8080", "models_dir": }`,
		"bad.toml": "addr=:8080\nmodels_dir\n",
	}
	for name, content := range bad {
		if _, err := Load(writeTempFile(t, d, name, content)); err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
	}
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	if cfg.Addr != DefaultAddr || cfg.Log.Level != "info" || cfg.Log.Format != "console" || cfg.Log.MaxSizeMB != 100 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	cfg = Config{Addr: ":1"}.WithDefaults()
	if cfg.Addr != ":1" {
		t.Fatalf("explicit addr overwritten: %s", cfg.Addr)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PREDICTD_ADDR":         ":7000",
		"PREDICTD_MAX_INFLIGHT": "2",
		"PREDICTD_WATCH":        "true",
		"PREDICTD_CORS_ORIGINS": "http://a, http://b ,",
		"PREDICTD_LOG_LEVEL":    "warn",
	}
	cfg := Config{Addr: ":9", ModelsDir: "/keep"}
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Addr != ":7000" || cfg.ModelsDir != "/keep" || cfg.MaxInflight != 2 || !cfg.Watch || cfg.Log.Level != "warn" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if !cfg.CORS.Enabled || len(cfg.CORS.Origins) != 2 || cfg.CORS.Origins[1] != "http://b" {
		t.Fatalf("unexpected cors: %+v", cfg.CORS)
	}
}

func TestApplyEnv_Malformed(t *testing.T) {
	for _, key := range []string{"PREDICTD_MAX_INFLIGHT", "PREDICTD_WATCH", "PREDICTD_MAX_BODY_BYTES"} {
		var cfg Config
		err := cfg.ApplyEnv(func(k string) string {
			if k == key {
				return "nope"
			}
			return ""
		})
		if err == nil {
			t.Fatalf("%s: expected error", key)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]Config{
		"bad duration": {MaxWait: "soon"},
		"negative":     {PredictTimeout: "-1s"},
		"bad format":   {Log: LogConfig{Format: "xml"}},
		"bad queue":    {MaxQueueDepth: -1},
	}
	for name, c := range cases {
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if err := (Config{MaxWait: "3s"}).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := SplitCSV(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
			}
		}
	}
}
