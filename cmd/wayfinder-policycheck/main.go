// Command wayfinder-policycheck validates a navigation policy table and an
// optional feature-flag file before they are rolled out. It exits non-zero
// on any integrity failure so it can gate CI and config deploys.
package main

import (
	"flag"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/tuutta/wayfinder/pkg/policy"
)

type checkConfig struct {
	PolicyPath string
	FlagsPath  string
	LogLevel   string
}

func main() {
	cfg := parseFlags()
	logger := setupLogger(cfg.LogLevel)

	if cfg.PolicyPath == "" {
		logger.Fatal("-policy is required")
	}

	table, err := policy.LoadFile(cfg.PolicyPath)
	if err != nil {
		logger.WithError(err).Fatal("Policy table failed validation")
	}
	logger.WithField("path", cfg.PolicyPath).Info("Policy table is valid")

	for _, ctx := range policy.AllContexts {
		cfg := table.ConfigFor(ctx)
		logger.WithFields(logrus.Fields{
			"context":   string(ctx),
			"nav_items": len(cfg.NavItems),
			"tabs":      len(cfg.Tabs),
			"assistant": string(cfg.Assistant.Mode),
		}).Info("Context summary")
	}

	if cfg.FlagsPath != "" {
		if err := checkFlags(cfg.FlagsPath, table, logger); err != nil {
			logger.WithError(err).Fatal("Feature-flag file failed validation")
		}
		logger.WithField("path", cfg.FlagsPath).Info("Feature-flag file is valid")
	}
}

func parseFlags() *checkConfig {
	cfg := &checkConfig{}
	flag.StringVar(&cfg.PolicyPath, "policy", "", "Path to the policy table YAML")
	flag.StringVar(&cfg.FlagsPath, "flags", "", "Path to the feature-flag YAML (optional)")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()
	return cfg
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}

// checkFlags parses the flag file and warns about nav flags that no policy
// item references; those are usually typos left behind by a rename.
func checkFlags(path string, table *policy.Table, logger *logrus.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	flagSet := make(map[string]bool)
	if err := yaml.Unmarshal(data, &flagSet); err != nil {
		return err
	}

	for key := range flagSet {
		id, ok := strings.CutPrefix(key, "nav.")
		if !ok {
			continue
		}
		if _, exists := table.NavItem(id); !exists {
			logger.WithField("flag", key).Warn("Flag references an unknown navigation item")
		}
	}
	return nil
}
