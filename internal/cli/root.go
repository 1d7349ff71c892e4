package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rohmanhakim/css-svg/internal/build"
	"github.com/rohmanhakim/css-svg/internal/config"
)

var (
	cfgFile     string
	baseDir     string
	maxWeight   int64
	verbose     bool
	timeout     time.Duration
	userAgent   string
	maxAttempt  int
	concurrency int
	outDir      string
	dryRun      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   build.Name + " [flags] <file.css>...",
	Short: "Inline SVG images referenced by stylesheets as data URIs.",
	Long: `css-svg rewrites every url(...) reference to an SVG image in the given
stylesheets into a percent-encoded data:image/svg+xml URI, leaving every other
byte of the stylesheet untouched.

References are resolved against --base-dir (local files) or fetched over
HTTP(S). Images heavier than --max-weight bytes, non-SVG references, existing
data URIs and references followed by /*base64:skip*/ are left as written.`,
	Version:       build.FullVersion(),
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), cfg, args, RunOptions{
			OutDir: outDir,
			DryRun: dryRun,
			Out:    cmd.OutOrStdout(),
		})
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// ExecuteWithArgs runs the root command with args, writing to out.
func ExecuteWithArgs(ctx context.Context, args []string, out io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/css-svg.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", "", "directory local references are resolved against (default: working directory)")
	rootCmd.PersistentFlags().Int64Var(&maxWeight, "max-weight", 0, "maximum size in bytes of an SVG to inline (0 for the default of 4096)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "report inlined and skipped references")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for remote fetches")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for remote fetches")
	rootCmd.PersistentFlags().IntVar(&maxAttempt, "max-attempt", 0, "maximum attempts per remote fetch")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "number of stylesheets rewritten concurrently")
	rootCmd.PersistentFlags().StringVar(&outDir, "out-dir", "", "write rewritten stylesheets here instead of in place")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "print a unified diff instead of writing")
}

// InitConfig reads in config file and flags, exiting on error.
func InitConfig() config.Config {
	cfg, err := InitConfigWithError()
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError starts from the config file when one is given, or the
// defaults otherwise, and applies every flag that was set on top.
func InitConfigWithError() (config.Config, error) {
	configBuilder := config.WithDefault()

	if cfgFile != "" {
		fileCfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return config.Config{}, fmt.Errorf("error initializing config from file: %w", err)
		}
		configBuilder = &fileCfg
	}

	// Override with CLI flag values where provided
	if baseDir != "" {
		configBuilder = configBuilder.WithBaseDirectory(baseDir)
	}

	if maxWeight != 0 {
		configBuilder = configBuilder.WithMaxWeightResource(maxWeight)
	}

	if verbose {
		configBuilder = configBuilder.WithVerbose(verbose)
	}

	if timeout != 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if maxAttempt != 0 {
		configBuilder = configBuilder.WithMaxAttempt(maxAttempt)
	}

	if concurrency != 0 {
		configBuilder = configBuilder.WithConcurrency(concurrency)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func ResetFlags() {
	cfgFile = ""
	baseDir = ""
	maxWeight = 0
	verbose = false
	timeout = 0
	userAgent = ""
	maxAttempt = 0
	concurrency = 0
	outDir = ""
	dryRun = false

	// cobra registers these lazily and keeps their values between executions
	for _, name := range []string{"version", "help"} {
		if f := rootCmd.Flags().Lookup(name); f != nil {
			_ = f.Value.Set("false")
			f.Changed = false
		}
	}
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetBaseDirForTest(dir string) {
	baseDir = dir
}

func SetMaxWeightForTest(weight int64) {
	maxWeight = weight
}

func SetVerboseForTest(v bool) {
	verbose = v
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetMaxAttemptForTest(attempts int) {
	maxAttempt = attempts
}

func SetConcurrencyForTest(conc int) {
	concurrency = conc
}

func SetOutDirForTest(dir string) {
	outDir = dir
}

func SetDryRunForTest(dry bool) {
	dryRun = dry
}
