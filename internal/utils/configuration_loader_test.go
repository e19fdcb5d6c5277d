package utils_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/scaffoldsync/internal/utils"
)

const (
	testEnvironmentPrefixConstant      = "TESTSCAFFOLDSYNC"
	testConfigurationNameConstant      = "config"
	testConfigurationTypeConstant      = "yaml"
	testConfigFileNameConstant         = "config.yaml"
	testLogLevelEnvironmentConstant    = testEnvironmentPrefixConstant + "_COMMON_LOG_LEVEL"
	testDirectoriesEnvironmentConstant = testEnvironmentPrefixConstant + "_TOOLS_CHECK_PROJECT_DIRS"
	testDelayEnvironmentConstant       = testEnvironmentPrefixConstant + "_TOOLS_CHECK_ALLOWED_DELAY_DAYS"
	testDelayKeyConstant               = "tools.check.allowed_delay_days"
	testConfigContentTemplateConstant  = "common:\n  log_level: %s\ntools:\n  check:\n    project_dirs: []\n"
	testEmbeddedLogLevelConstant       = "info"
	testFileLogLevelConstant           = "warn"
	testEnvironmentLogLevelConstant    = "error"
	testApplicationNameConstant        = "scaffoldsync"
)

type configurationFixture struct {
	Common struct {
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"common"`
	Tools struct {
		Check struct {
			ProjectDirectories []string `mapstructure:"project_dirs"`
			AllowedDelayDays   *int     `mapstructure:"allowed_delay_days"`
		} `mapstructure:"check"`
	} `mapstructure:"tools"`
}

func newTestLoader(searchPaths ...string) *utils.ConfigurationLoader {
	return utils.NewConfigurationLoader(utils.ConfigurationLoaderOptions{
		ConfigurationName:     testConfigurationNameConstant,
		ConfigurationType:     testConfigurationTypeConstant,
		EnvironmentPrefix:     testEnvironmentPrefixConstant,
		SearchPaths:           searchPaths,
		EnvironmentKeys:       []string{testDelayKeyConstant},
		EmbeddedConfiguration: []byte(fmt.Sprintf(testConfigContentTemplateConstant, testEmbeddedLogLevelConstant)),
	})
}

func TestConfigurationLoaderLayers(testInstance *testing.T) {
	testCases := []struct {
		name                string
		fileLogLevel        string
		environmentLogLevel string
		expectedLogLevel    string
	}{
		{name: "embedded_only", expectedLogLevel: testEmbeddedLogLevelConstant},
		{name: "file_overrides_embedded", fileLogLevel: testFileLogLevelConstant, expectedLogLevel: testFileLogLevelConstant},
		{name: "environment_overrides_file", fileLogLevel: testFileLogLevelConstant, environmentLogLevel: testEnvironmentLogLevelConstant, expectedLogLevel: testEnvironmentLogLevelConstant},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			configurationFilePath := ""
			if len(testCase.fileLogLevel) > 0 {
				configurationFilePath = filepath.Join(testInstance.TempDir(), testConfigFileNameConstant)
				configurationContent := fmt.Sprintf(testConfigContentTemplateConstant, testCase.fileLogLevel)
				require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(configurationContent), 0o600))
			}
			if len(testCase.environmentLogLevel) > 0 {
				testInstance.Setenv(testLogLevelEnvironmentConstant, testCase.environmentLogLevel)
			}

			var loadedConfiguration configurationFixture
			metadata, loadError := newTestLoader(testInstance.TempDir()).LoadConfiguration(configurationFilePath, &loadedConfiguration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedLogLevel, loadedConfiguration.Common.LogLevel)
			require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationLoaderDecodesEnvironmentValues(testInstance *testing.T) {
	testInstance.Setenv(testDirectoriesEnvironmentConstant, "services/api,services/worker")
	testInstance.Setenv(testDelayEnvironmentConstant, "7")

	var loadedConfiguration configurationFixture
	_, loadError := newTestLoader(testInstance.TempDir()).LoadConfiguration("", &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, []string{"services/api", "services/worker"}, loadedConfiguration.Tools.Check.ProjectDirectories)
	require.NotNil(testInstance, loadedConfiguration.Tools.Check.AllowedDelayDays)
	require.Equal(testInstance, 7, *loadedConfiguration.Tools.Check.AllowedDelayDays)
}

func TestConfigurationLoaderSearchesPaths(testInstance *testing.T) {
	emptyDirectory := testInstance.TempDir()
	configuredDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(configuredDirectory, testConfigFileNameConstant)
	configurationContent := fmt.Sprintf(testConfigContentTemplateConstant, testFileLogLevelConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(configurationContent), 0o600))

	var loadedConfiguration configurationFixture
	metadata, loadError := newTestLoader(emptyDirectory, configuredDirectory).LoadConfiguration("", &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, testFileLogLevelConstant, loadedConfiguration.Common.LogLevel)
	require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
	require.Nil(testInstance, loadedConfiguration.Tools.Check.AllowedDelayDays)
}

func TestConfigurationLoaderRejectsMissingExplicitFile(testInstance *testing.T) {
	var loadedConfiguration configurationFixture
	_, loadError := newTestLoader().LoadConfiguration(filepath.Join(testInstance.TempDir(), "absent.yaml"), &loadedConfiguration)
	require.Error(testInstance, loadError)
}

func TestUserConfigurationDirectory(testInstance *testing.T) {
	configurationHome := testInstance.TempDir()
	testInstance.Setenv("XDG_CONFIG_HOME", configurationHome)
	testInstance.Setenv("HOME", testInstance.TempDir())

	directory, available := utils.UserConfigurationDirectory(testApplicationNameConstant)
	require.True(testInstance, available)
	require.Contains(testInstance, directory, testApplicationNameConstant)
}
