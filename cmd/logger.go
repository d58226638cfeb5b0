package cmd

import "go.uber.org/zap"

// newLogger builds the zap logger every command shares: a concise,
// color-free console encoding in normal operation, full development
// output (caller, stacktraces) under --verbose.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.CallerKey = ""
	cfg.DisableStacktrace = true
	return cfg.Build()
}
