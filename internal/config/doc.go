// Package config defines the switch settings and provides helpers to load,
// validate and save them in YAML format.
//
// Values may be overridden from the environment, optionally seeded from a
// dotenv file.
package config
