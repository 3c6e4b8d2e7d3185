// Package utils hosts the configuration loader and logger factory shared by the CLI.
//
// ConfigurationLoader layers the embedded defaults, an optional settings file and
// REPOS_ environment variables through Viper. LoggerFactory builds zap loggers.
package utils
