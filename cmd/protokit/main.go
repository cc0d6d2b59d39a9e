package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/contractkit/protokit-go/internal/app"
	"github.com/contractkit/protokit-go/internal/config"
	"github.com/contractkit/protokit-go/internal/domain"
	"github.com/contractkit/protokit-go/internal/output"
	"github.com/contractkit/protokit-go/internal/utils"
	"github.com/contractkit/protokit-go/pkg/version"
)

var (
	cfgFile string
	verbose bool
	log     *utils.Logger
)

// errPolicy marks a run whose findings violate the configured policy. The
// message is already on the report; the process just needs a non-zero exit.
var errPolicy = errors.New("policy violation")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errPolicy) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "protokit",
	Short: "Validate, diff and catalog protocol manifests",
	Long: `Protokit works with declarative protocol manifests (data, event, api,
agent and semantic contracts): it validates them, computes structural
diffs with breaking-change classification, derives migration plans, and
builds a cross-manifest catalog with cycle detection and PII egress
analysis.`,
	Version:       version.Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.protokit/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "Output format (text or json)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	rootCmd.PersistentFlags().Bool("compress", false, "zstd-compress file output")
	rootCmd.PersistentFlags().IntP("workers", "j", 5, "Number of concurrent workers")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable the result cache")
	rootCmd.PersistentFlags().Duration("cache-ttl", 24*time.Hour, "Result cache TTL")
	rootCmd.PersistentFlags().StringSlice("validators", nil, "Restrict runs to the named validators")

	// Bind flags to viper
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("output.file", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("output.compress", rootCmd.PersistentFlags().Lookup("compress"))
	_ = viper.BindPFlag("concurrency.workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("cache.ttl", rootCmd.PersistentFlags().Lookup("cache-ttl"))
	_ = viper.BindPFlag("validators.only", rootCmd.PersistentFlags().Lookup("validators"))

	diffCmd.Flags().String("git-base", "", "Diff against the manifest content at this git revision")
	diffCmd.Flags().Bool("fail-on-breaking", true, "Exit non-zero when breaking changes are found")
	_ = viper.BindPFlag("policy.fail_on_breaking", diffCmd.Flags().Lookup("fail-on-breaking"))

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// setup loads config, builds the logger and creates the engine. Every
// subcommand starts here.
func setup(cmd *cobra.Command) (*app.Engine, *config.Config, *output.Writer, error) {
	logLevel := "info"
	if verbose {
		logLevel = "debug"
	}
	log = utils.NewLogger(utils.LoggerOptions{
		Level:   logLevel,
		Format:  "pretty",
		Verbose: verbose,
	})

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}

	engine := app.New(app.Options{
		Config:   cfg,
		Logger:   log,
		Progress: cfg.Output.File == "" && cfg.Output.Format == output.FormatText,
	})

	writer := output.NewWriter(output.Options{
		Format:   cfg.Output.Format,
		File:     cfg.Output.File,
		Compress: cfg.Output.Compress,
	})

	return engine, cfg, writer, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

var validateCmd = &cobra.Command{
	Use:   "validate <path>...",
	Short: "Validate manifest files or directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, cfg, writer, err := setup(cmd)
		if err != nil {
			return err
		}
		defer engine.Close()

		ctx, cancel := signalContext()
		defer cancel()

		entries, ok, err := engine.ValidateFiles(ctx, args)
		if err != nil {
			return err
		}
		if err := writer.WriteValidation(entries); err != nil {
			return err
		}
		if !ok {
			return errPolicy
		}
		if cfg.Policy.FailOnWarnings && hasWarnings(entries) {
			return errPolicy
		}
		return nil
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff <from> [to]",
	Short: "Diff two manifests and classify the changes",
	Long: `Diff two manifest files, or one file against its own content at a git
revision via --git-base. Breaking changes make the command exit non-zero
unless --fail-on-breaking=false.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, cfg, writer, err := setup(cmd)
		if err != nil {
			return err
		}
		defer engine.Close()

		gitBase, _ := cmd.Flags().GetString("git-base")
		var d *domain.DiffResult
		switch {
		case gitBase != "":
			if len(args) != 1 {
				return fmt.Errorf("--git-base takes exactly one manifest path")
			}
			d, err = engine.DiffAgainstGitBase(args[0], gitBase)
		case len(args) == 2:
			d, err = engine.DiffFiles(args[0], args[1])
		default:
			return fmt.Errorf("need two manifest paths, or one path with --git-base")
		}
		if err != nil {
			return err
		}

		if err := writer.WriteDiff(d); err != nil {
			return err
		}
		if cfg.Policy.FailOnBreaking && d.HasBreaking() {
			return errPolicy
		}
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <expression> <path>...",
	Short: "List manifests matching a query expression",
	Long: `Filter manifests with path-based expressions like
"governance.policy.classification:=:pii" or "schema.fields:contains:email".`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, _, err := setup(cmd)
		if err != nil {
			return err
		}
		defer engine.Close()

		matched, err := engine.QueryFiles(args[1:], args[0])
		if err != nil {
			return err
		}
		for _, path := range matched {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate <from> <to>",
	Short: "Derive a migration plan from a manifest diff",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, writer, err := setup(cmd)
		if err != nil {
			return err
		}
		defer engine.Close()

		plan, err := engine.MigrateFiles(args[0], args[1])
		if err != nil {
			return err
		}
		return writer.WriteMigration(plan)
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog <path>...",
	Short: "Build a manifest catalog and run graph analyses",
	Long: `Index manifests by URN, resolve cross-manifest references, detect
reference cycles and flag PII flowing to external consumers.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, writer, err := setup(cmd)
		if err != nil {
			return err
		}
		defer engine.Close()

		ctx, cancel := signalContext()
		defer cancel()

		report, err := engine.CatalogReport(ctx, args)
		if err != nil {
			return err
		}
		return writer.WriteCatalog(report)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
	},
}

func hasWarnings(entries []output.ValidationEntry) bool {
	for _, e := range entries {
		for _, res := range e.Report.Results {
			for _, issue := range res.Issues {
				if issue.Level == domain.LevelWarn {
					return true
				}
			}
		}
	}
	return false
}
