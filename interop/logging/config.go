// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory at startup.
const DefaultConfigFile = "logging-config.yaml"

const (
	FormatText = "text"
	FormatJSON = "json"

	OutputStderr = "stderr"
	OutputStdout = "stdout"
)

// Config describes where internal logs go and how they look.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DefaultConfig is used when no configuration file exists.
func DefaultConfig(level string) Config {
	return Config{Level: level, Format: FormatText, Output: OutputStderr}
}

// LoadConfig reads a YAML logging configuration from path. A missing file is
// not an error: the defaults are returned and found is false. Fields left out
// of the file keep their default value.
func LoadConfig(path string, defaults Config) (cfg Config, found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaults, false, nil
	}
	if err != nil {
		return defaults, false, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg = defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return defaults, true, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, true, nil
}

// Apply installs cfg on the standard logrus logger. The returned closer
// releases the log file, if one was opened.
func Apply(cfg Config) (io.Closer, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var formatter logrus.Formatter
	switch cfg.Format {
	case "", FormatText:
		formatter = &InternalFormatter{}
	case FormatJSON:
		formatter = &logrus.JSONFormatter{}
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	var out io.Writer
	var closer io.Closer = nopCloser{}
	switch cfg.Output {
	case "", OutputStderr:
		out = os.Stderr
	case OutputStdout:
		out = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out, closer = f, f
	}

	logrus.SetLevel(level)
	logrus.SetFormatter(formatter)
	SetOutput(out)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
