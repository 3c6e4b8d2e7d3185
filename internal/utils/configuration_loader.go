package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	configurationKeySeparatorConstant       = "."
	environmentKeySeparatorConstant         = "_"
	sliceValueSeparatorConstant             = ","
	readEmbeddedConfigurationStageConstant  = "read embedded configuration"
	readConfigurationFileStageConstant      = "read configuration file"
	decodeConfigurationStageConstant        = "decode configuration"
	configurationErrorTemplateConstant      = "failed to %s: %v"
	configurationErrorWithPathTemplateConst = "failed to %s %s: %v"
	targetNotConfiguredMessageConstant      = "configuration target not provided"
)

// ErrConfigurationTargetNotProvided indicates Load was called with a nil target.
var ErrConfigurationTargetNotProvided = errors.New(targetNotConfiguredMessageConstant)

// ConfigurationError describes the loading stage that failed.
type ConfigurationError struct {
	Stage string
	Path  string
	Cause error
}

// Error describes the failure.
func (configurationError ConfigurationError) Error() string {
	if len(configurationError.Path) > 0 {
		return fmt.Sprintf(configurationErrorWithPathTemplateConst, configurationError.Stage, configurationError.Path, configurationError.Cause)
	}
	return fmt.Sprintf(configurationErrorTemplateConstant, configurationError.Stage, configurationError.Cause)
}

// Unwrap exposes the underlying cause.
func (configurationError ConfigurationError) Unwrap() error {
	return configurationError.Cause
}

// ConfigurationLoaderOptions configures a ConfigurationLoader.
type ConfigurationLoaderOptions struct {
	Name                  string
	Type                  string
	EnvironmentPrefix     string
	SearchPaths           []string
	EmbeddedConfiguration []byte
}

// LoadedConfiguration reports where the effective settings came from.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// ConfigurationLoader layers embedded defaults, an optional file and environment variables.
type ConfigurationLoader struct {
	options ConfigurationLoaderOptions
}

// NewConfigurationLoader constructs a ConfigurationLoader.
func NewConfigurationLoader(options ConfigurationLoaderOptions) *ConfigurationLoader {
	return &ConfigurationLoader{options: options}
}

// Load decodes the merged settings into target. An explicit configurationFilePath must exist;
// otherwise the search paths are consulted and a missing file is not an error.
// Environment variables override file values and comma-separated values decode into slices.
func (loader *ConfigurationLoader) Load(configurationFilePath string, target any) (LoadedConfiguration, error) {
	if target == nil {
		return LoadedConfiguration{}, ErrConfigurationTargetNotProvided
	}

	viperInstance := viper.New()
	viperInstance.SetConfigType(loader.options.Type)

	if len(loader.options.EmbeddedConfiguration) > 0 {
		if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.options.EmbeddedConfiguration)); mergeError != nil {
			return LoadedConfiguration{}, ConfigurationError{Stage: readEmbeddedConfigurationStageConstant, Cause: mergeError}
		}
	}

	trimmedPath := strings.TrimSpace(configurationFilePath)
	if len(trimmedPath) > 0 {
		viperInstance.SetConfigFile(trimmedPath)
		if readError := viperInstance.MergeInConfig(); readError != nil {
			return LoadedConfiguration{}, ConfigurationError{Stage: readConfigurationFileStageConstant, Path: trimmedPath, Cause: readError}
		}
	} else if len(loader.options.SearchPaths) > 0 {
		viperInstance.SetConfigName(loader.options.Name)
		for _, searchPath := range loader.options.SearchPaths {
			viperInstance.AddConfigPath(searchPath)
		}
		if readError := viperInstance.MergeInConfig(); readError != nil {
			var notFoundError viper.ConfigFileNotFoundError
			if !errors.As(readError, &notFoundError) {
				return LoadedConfiguration{}, ConfigurationError{Stage: readConfigurationFileStageConstant, Path: viperInstance.ConfigFileUsed(), Cause: readError}
			}
		}
	}

	if len(loader.options.EnvironmentPrefix) > 0 {
		viperInstance.SetEnvPrefix(loader.options.EnvironmentPrefix)
	}
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	viperInstance.AutomaticEnv()

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(sliceValueSeparatorConstant),
	))
	if decodeError := viperInstance.Unmarshal(target, decodeHook); decodeError != nil {
		return LoadedConfiguration{}, ConfigurationError{Stage: decodeConfigurationStageConstant, Cause: decodeError}
	}

	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}
