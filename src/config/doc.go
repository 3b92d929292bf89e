// Package config defines the configuration of an intree node or network.
//
// Config carries mapstructure tags so that the cmd/intree commands can bind
// it to cobra flags and to an intree.toml file through viper.
package config
