package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"exifheal/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path:        %s (exists: %s)\n", path, yesNo(exists))
			fmt.Fprintf(out, "State dir:          %s\n", cfg.Paths.StateDir)
			fmt.Fprintf(out, "Log dir:            %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "Backup dir:         %s\n", cfg.Paths.BackupDir)
			fmt.Fprintf(out, "Report dir:         %s\n", cfg.Paths.ReportDir)
			fmt.Fprintf(out, "Extensions:         %s\n", strings.Join(cfg.Scan.Extensions, ","))
			fmt.Fprintf(out, "Exclude globs:      %s\n", strings.Join(cfg.Scan.ExcludeGlobs, " "))
			fmt.Fprintf(out, "Max time gap:       %ds\n", cfg.Scan.MaxTimeGap)
			fmt.Fprintf(out, "Use mtime fallback: %s\n", yesNo(cfg.Scan.UseMtime))
			fmt.Fprintf(out, "GPS jump radius:    %.1f km\n", cfg.GPS.MaxDistanceKM)
			fmt.Fprintf(out, "Allow GPS jumps:    %s\n", yesNo(cfg.GPS.AllowJumps))
			fmt.Fprintf(out, "Min time conf:      %s\n", cfg.Apply.MinTimeConfidence)
			fmt.Fprintf(out, "Min GPS conf:       %s\n", cfg.Apply.MinGPSConfidence)
			fmt.Fprintf(out, "Backup on apply:    %s\n", yesNo(cfg.Apply.Backup))
			fmt.Fprintf(out, "Exiftool binary:    %s\n", cfg.ExifTool.Binary)
			return nil
		},
	}
}
