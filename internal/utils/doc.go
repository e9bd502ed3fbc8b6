// Package utils exposes reusable helpers consumed by the fmtstep commands.
//
// It houses the viper backed ConfigurationLoader, the zap LoggerFactory, the
// command context accessor that carries configuration metadata to
// subcommands, and a writer that serializes output from concurrent runs.
package utils
