package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bufferbench [suite files...]",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

func configureFlags(flags *pflag.FlagSet) {
	// Suite selection
	flags.StringSliceP("config", "c", nil, "Path to a suite file (JSON or YAML, repeatable)")
	flags.String("mode", string(ModeBoth), "Result ordering to benchmark: 'ordered', 'unordered', or 'both'")
	flags.String("title", "", "Override the suite title (single suite file only)")

	// Request flags
	flags.Duration("timeout", 0, "Per-request timeout (0 means no timeout)")

	// Output flags
	flags.StringP("output", "o", string(OutputText), "Report format: 'text', 'json', or 'yaml'")
	flags.Bool("chart", true, "Draw a mean-time chart after each text report")
	flags.BoolP("verbose", "v", false, "Log each trial and request failure to stderr")

	// Tracing flags
	flags.String("tracing-endpoint", "", "OTLP collector endpoint (enables tracing)")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: 'grpc' or 'http'")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Float64("tracing-sample-rate", 1.0, "Fraction of suites to sample (0.0-1.0)")
	flags.String("tracing-service-name", "", "Service name reported on spans")
	flags.Bool("tracing-propagate", true, "Send W3C trace context headers to the target")
}

func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlags copies command-line values into cfg. Positional arguments are
// treated as additional suite files.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	files, err := fs.GetStringSlice("config")
	if err != nil {
		return err
	}
	for _, f := range append(files, fs.Args()...) {
		if f = strings.TrimSpace(f); f != "" {
			cfg.ConfigFiles = append(cfg.ConfigFiles, f)
		}
	}

	mode, err := fs.GetString("mode")
	if err != nil {
		return err
	}
	cfg.Mode = Mode(strings.ToLower(strings.TrimSpace(mode)))

	if cfg.Title, err = fs.GetString("title"); err != nil {
		return err
	}
	if cfg.Timeout, err = fs.GetDuration("timeout"); err != nil {
		return err
	}

	output, err := fs.GetString("output")
	if err != nil {
		return err
	}
	cfg.Output = OutputFormat(strings.ToLower(strings.TrimSpace(output)))

	if cfg.Chart, err = fs.GetBool("chart"); err != nil {
		return err
	}
	if cfg.Verbose, err = fs.GetBool("verbose"); err != nil {
		return err
	}

	return applyTracingFlags(&cfg.Tracing, fs)
}

func applyTracingFlags(t *TracingConfig, fs *pflag.FlagSet) error {
	var err error
	if t.Endpoint, err = fs.GetString("tracing-endpoint"); err != nil {
		return err
	}
	t.Endpoint = strings.TrimSpace(t.Endpoint)
	if t.Protocol, err = fs.GetString("tracing-protocol"); err != nil {
		return err
	}
	if t.Insecure, err = fs.GetBool("tracing-insecure"); err != nil {
		return err
	}
	if t.SampleRate, err = fs.GetFloat64("tracing-sample-rate"); err != nil {
		return err
	}
	if t.ServiceName, err = fs.GetString("tracing-service-name"); err != nil {
		return err
	}
	if fs.Changed("tracing-propagate") {
		val, err := fs.GetBool("tracing-propagate")
		if err != nil {
			return err
		}
		t.Propagate = &val
	}
	return nil
}
