// Package cli constructs the fmtstep command-line interface. It wires the
// cobra command hierarchy (format, watch and config) to the viper backed
// configuration loader, the embedded default configuration and the zap
// logger factory.
package cli
