package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/s3pi/pkg/s3pi/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage s3pi configuration settings.

Configuration is loaded from:
  1. /etc/s3pi/config
  2. $XDG_CONFIG_HOME/s3pi/config
  3. The file given with --config

Later files override earlier ones. Environment variables with the S3PI_
prefix override config file settings:
  S3PI_BUCKET=my-packages
  S3PI_UPLOAD=true`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration settings from all files.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path of the user configuration file.`,
	Run:   runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	fmt.Printf("s3.bucket:     %s\n", settings.Bucket)
	fmt.Printf("s3.prefix:     %s\n", settings.Prefix)
	fmt.Printf("upload:        %t\n", settings.Upload)
	fmt.Printf("region:        %s\n", settings.Region)
	fmt.Printf("strategy:      %s\n", settings.Strategy)
	fmt.Printf("strict_remote: %t\n", settings.StrictRemote)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) {
	if cfgFile != "" {
		fmt.Println(cfgFile)
		return
	}
	fmt.Println(config.DefaultPath())
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config file already exists: %s\n", path)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	content := fmt.Sprintf(`[default]
s3.bucket =
s3.prefix = %s
upload = %t
region = %s
strategy = %s
strict_remote = %t
`, config.DefaultPrefix, config.DefaultUpload, config.DefaultRegion,
		config.DefaultStrategy, config.DefaultStrictRemote)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("Created config file: %s\n", path)
	return nil
}
