// Package config loads the weibull-forecaster server configuration from YAML and watches
// the file for changes.
package config
