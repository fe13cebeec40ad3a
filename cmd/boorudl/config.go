package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"boorudl/pkg/config"
	"boorudl/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage boorudl configuration files.

Configuration is merged from (highest priority first):
  - Command line flags
  - Environment variables (LOGIN_NAME, API_KEY, BOORUDL_*)
  - Configuration file
  - Default values`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created as '.boorudl.yaml' in your home directory unless
a different path is given with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging flags, environment
variables, the configuration file and defaults. The API key is masked.`,
	Run: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

const exampleConfig = `# boorudl configuration file
#
# Credentials can also come from the LOGIN_NAME and API_KEY environment
# variables or a .env file in the working directory; BOORUDL_* variables
# override the remaining settings.

board:
  # Image board endpoint
  base_url: "https://danbooru.donmai.us"

  # Sent with every request; boards ask for an identifying agent
  user_agent: "boorudl/1.0.0"

  # Optional credential pair, prefer 'boorudl auth login' over
  # writing the key here
  login: ""
  api_key: ""

download:
  # Number of parallel media transfers
  concurrent_downloads: 3

  # Number of listing pages fetched in parallel
  page_concurrency: 4

  # Timeout for metadata requests
  request_timeout: 30s

  # Timeout for a single media transfer
  download_timeout: 5m

output:
  # Where the per-rating subfolders are created
  directory: "output"

  # Used when directory cannot be created
  fallback_directory: ""

logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path, empty logs to stderr
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			ui.PrintError("Failed to determine config path", err.Error())
			os.Exit(1)
		}
		configPath = path
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Adjust the settings, all values are optional")
	fmt.Println("2. Store credentials with 'boorudl auth login' if needed")
	fmt.Println("3. Start downloading with 'boorudl download <tag>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Mask the API key for display
	displayCfg := *cfg
	if displayCfg.Board.APIKey != "" {
		displayCfg.Board.APIKey = maskSecret(displayCfg.Board.APIKey)
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (LOGIN_NAME, API_KEY, BOORUDL_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: ~/.boorudl.yaml (when present)")
	}
	fmt.Println("4. Default values")
}
