package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"predictd/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "predictd",
		Short:         "Domain-routed prediction server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newSmokeCmd(), newModelsCmd())
	return root
}

// serveFlags mirror config.Config; only flags the user set override the
// file and environment.
type serveFlags struct {
	configPath     string
	addr           string
	modelsDir      string
	watch          bool
	historyDB      string
	maxQueueDepth  int
	maxInflight    int
	maxWait        string
	predictTimeout string
	cacheSize      int
	maxBodyBytes   int64
	corsOrigins    string
	logLevel       string
	logFormat      string
	logFile        string
	requestLog     string
}

func (f *serveFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "Config file (.yaml, .json, .toml); defaults to PREDICTD_CONFIG")
	fs.StringVar(&f.addr, "addr", config.DefaultAddr, "HTTP listen address")
	fs.StringVar(&f.modelsDir, "models-dir", "", "Directory of model definition files (empty serves built-in models)")
	fs.BoolVar(&f.watch, "watch", false, "Reload models when files in --models-dir change")
	fs.StringVar(&f.historyDB, "history-db", "", "SQLite file for the prediction history (empty disables)")
	fs.IntVar(&f.maxQueueDepth, "max-queue-depth", 0, "Per-model queue depth (0 = default)")
	fs.IntVar(&f.maxInflight, "max-inflight", 0, "Per-model concurrent predictions (0 = default)")
	fs.StringVar(&f.maxWait, "max-wait", "", "Max admission wait, e.g. 10s")
	fs.StringVar(&f.predictTimeout, "predict-timeout", "", "Per-request predict timeout (empty disables)")
	fs.IntVar(&f.cacheSize, "cache-size", 0, "Result cache entries (0 = default, negative disables)")
	fs.Int64Var(&f.maxBodyBytes, "max-body-bytes", 0, "Max /predict body size (0 = 1 MiB)")
	fs.StringVar(&f.corsOrigins, "cors-origins", "", "Comma-separated CORS origins; enables CORS")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format: console|json")
	fs.StringVar(&f.logFile, "log-file", "", "Also write logs to this file, rotated")
	fs.StringVar(&f.requestLog, "request-log", "", "Default per-request log level: off|error|info|debug")
}

// resolveConfig layers file, environment and explicitly set flags, in that order.
func resolveConfig(fs *pflag.FlagSet, f *serveFlags, getenv func(string) string) (config.Config, error) {
	var cfg config.Config
	path := f.configPath
	if path == "" {
		path = getenv("PREDICTD_CONFIG")
	}
	if path != "" {
		c, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return cfg, err
	}
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("addr", func() { cfg.Addr = f.addr })
	set("models-dir", func() { cfg.ModelsDir = f.modelsDir })
	set("watch", func() { cfg.Watch = f.watch })
	set("history-db", func() { cfg.HistoryDB = f.historyDB })
	set("max-queue-depth", func() { cfg.MaxQueueDepth = f.maxQueueDepth })
	set("max-inflight", func() { cfg.MaxInflight = f.maxInflight })
	set("max-wait", func() { cfg.MaxWait = f.maxWait })
	set("predict-timeout", func() { cfg.PredictTimeout = f.predictTimeout })
	set("cache-size", func() { cfg.CacheSize = f.cacheSize })
	set("max-body-bytes", func() { cfg.MaxBodyBytes = f.maxBodyBytes })
	set("cors-origins", func() {
		cfg.CORS.Origins = config.SplitCSV(f.corsOrigins)
		cfg.CORS.Enabled = len(cfg.CORS.Origins) > 0
	})
	set("log-level", func() { cfg.Log.Level = f.logLevel })
	set("log-format", func() { cfg.Log.Format = f.logFormat })
	set("log-file", func() { cfg.Log.File = f.logFile })
	set("request-log", func() { cfg.Log.Request = f.requestLog })

	cfg = cfg.WithDefaults()
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	return cfg, cfg.Validate()
}
