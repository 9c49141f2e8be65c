// Package config loads, validates, and normalizes clipforge configuration
// from TOML, providing repository defaults for every tunable so the daemon
// and CLI run without any config file present.
package config
