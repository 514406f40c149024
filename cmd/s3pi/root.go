package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/s3pi/pkg/s3pi/config"
	"github.com/jamesainslie/s3pi/pkg/s3pi/logging"
	"github.com/jamesainslie/s3pi/pkg/s3pi/planner"
	"github.com/jamesainslie/s3pi/pkg/s3pi/remote"
	"github.com/jamesainslie/s3pi/pkg/s3pi/sync"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "s3pi <package-directory>",
		Short: "Manage a PEP 503 simple package index hosted on S3",
		Long: `s3pi adds local package files to a PEP 503 simple index and keeps
the index synchronized with an S3 bucket, fetching and uploading only
the index pages a change actually touches.

Examples:
  s3pi ./dist                     # Update the index locally only
  s3pi --upload ./dist            # Update and sync with the bucket
  s3pi --strategy full ./dist     # Clone the whole remote tree first
  s3pi config show                # Show effective configuration`,
		Args:          cobra.ExactArgs(1),
		RunE:          runSync,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: $XDG_CONFIG_HOME/s3pi/config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	rootCmd.Flags().Bool("upload", false, "synchronize with the remote index after updating it")
	rootCmd.Flags().String("region", "", "override the S3 region (default: us-east-1)")
	rootCmd.Flags().String("strategy", "", "sync strategy: incremental or full")
	rootCmd.Flags().Bool("strict-remote", false, "treat an unreachable remote as fatal")

	// Bind flags to viper; config file values are layered in as
	// defaults at run time, so flags and S3PI_* env override them.
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("upload", rootCmd.Flags().Lookup("upload"))
	_ = viper.BindPFlag("region", rootCmd.Flags().Lookup("region"))
	_ = viper.BindPFlag("strategy", rootCmd.Flags().Lookup("strategy"))
	_ = viper.BindPFlag("strict_remote", rootCmd.Flags().Lookup("strict-remote"))

	viper.SetEnvPrefix("S3PI")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// applySettings layers config file values under flag and env values.
func applySettings(s *config.Settings) {
	viper.SetDefault("bucket", s.Bucket)
	viper.SetDefault("prefix", s.Prefix)
	viper.SetDefault("upload", s.Upload)
	viper.SetDefault("region", s.Region)
	viper.SetDefault("strategy", s.Strategy)
	viper.SetDefault("strict_remote", s.StrictRemote)
}

func runSync(cmd *cobra.Command, args []string) error {
	incoming := args[0]
	fsys := afero.NewOsFs()

	// Validate the argument before touching anything else.
	ok, err := afero.DirExists(fsys, incoming)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("package directory %q does not exist", incoming)
	}

	settings, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	applySettings(settings)

	logger := logging.New(logging.Config{Verbose: viper.GetBool("verbose")})

	strategy, err := planner.ParseStrategy(viper.GetString("strategy"))
	if err != nil {
		return err
	}

	upload := viper.GetBool("upload")
	strict := viper.GetBool("strict_remote")
	ctx := cmd.Context()

	var store remote.Store
	if upload {
		s3store, err := remote.NewS3Store(ctx, remote.S3Config{
			Bucket: viper.GetString("bucket"),
			Region: viper.GetString("region"),
			Fs:     fsys,
			Logger: logging.ForComponent(logger, "remote"),
		})
		switch {
		case err == nil:
			store = s3store
		case errors.Is(err, remote.ErrUnavailable) && !strict:
			logger.Error("remote unavailable, maintaining index locally only", "error", err)
			upload = false
		default:
			return err
		}
	}

	runner := sync.NewRunner(fsys, store, sync.Options{
		IncomingDir:  incoming,
		Upload:       upload,
		Prefix:       viper.GetString("prefix"),
		Strategy:     strategy,
		StrictRemote: strict,
	}, logging.ForComponent(logger, "sync"))

	return runner.Run(ctx)
}
