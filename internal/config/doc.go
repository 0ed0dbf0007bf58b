// Package config provides configuration structures and utilities for
// the converter. It defines the main configuration options for parsing
// coverage profiles, report generation and history recording, plus the
// optional .cobertura YAML file that carries project-level settings.
package config
