package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long:  `Prints the configuration after defaults, the config file and PROMPTDRAFTER_* overrides are applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := map[string]interface{}{
			"source":     cfg.Source,
			"save_paths": cfg.SavePaths,
			"settings": map[string]interface{}{
				"auto_save":             cfg.Settings.AutoSave,
				"default_wildcard_mode": cfg.Settings.DefaultWildcardMode,
			},
			"server": map[string]interface{}{
				"port":    cfg.Server.Port,
				"metrics": cfg.Server.Metrics,
			},
			"storage": map[string]interface{}{
				"backend":      cfg.Storage.Backend,
				"redis_addr":   cfg.Storage.RedisAddr,
				"redis_db":     cfg.Storage.RedisDB,
				"redis_prefix": cfg.Storage.RedisPrefix,
				"sqlite_path":  cfg.Storage.SQLitePath,
				"ttl":          cfg.Storage.TTL,
			},
			"editor":    map[string]interface{}{"debounce": cfg.DebounceDelay().String()},
			"log_level": cfg.LogLevel,
		}
		data, err := yaml.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
