package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sibyllinesoft/contractver/pkg/cli"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(getenv("CONTRACTVER_LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(level)
	}

	rootCmd := cli.NewRootCommand()

	flag.Parse()

	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Fatal("command failed")
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
