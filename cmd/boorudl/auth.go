package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"boorudl/pkg/auth"
	"boorudl/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage board credentials",
	Long: `Manage the stored login and API key pair.

Credentials are stored using:
  - System keychain (when available)
  - Environment variables (LOGIN_NAME and API_KEY, read-only fallback)

Anonymous access works without credentials; an API key raises the tag
limit and unlocks content gated by account level.`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [login]",
	Short: "Store a login and API key pair securely",
	Long: `Store a board login and API key pair in the system keychain.

To get an API key:
1. Log into the board in your browser
2. Open your profile page
3. Follow the API key link and generate a key`,
	Example: `  # Interactive login
  boorudl auth login

  # Login with the account name given up front
  boorudl auth login myaccount`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:     "logout [login]",
	Aliases: []string{"remove"},
	Short:   "Remove a stored credential pair",
	Long: `Remove a stored credential pair from the system keychain.

Without an argument the default pair is removed.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"list"},
	Short:   "Show the credential pair that would be used",
	Long:    `Show the effective credential pair with the API key masked.`,
	Run:     runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var login string
	if len(args) > 0 {
		login = strings.TrimSpace(args[0])
	}

	reader := bufio.NewReader(os.Stdin)

	if login == "" {
		fmt.Print("Board login: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read login", err.Error())
			os.Exit(1)
		}
		login = strings.TrimSpace(input)
	}

	if login == "" {
		ui.PrintError("Login is required")
		os.Exit(1)
	}

	fmt.Print("API key (input is hidden): ")
	apiKey, err := readPassword()
	if err != nil {
		ui.PrintError("Failed to read API key", err.Error())
		os.Exit(1)
	}
	if apiKey == "" {
		ui.PrintError("API key is required")
		os.Exit(1)
	}

	creds := &auth.Credentials{
		Login:  login,
		APIKey: apiKey,
	}

	if err := manager.Store(creds); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Credentials stored for " + login)
	fmt.Println("\nDownloads will now use this account:")
	fmt.Println("  boorudl download <tag>")
	fmt.Println("\nUse --anonymous to skip stored credentials for a run.")
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var login string
	if len(args) > 0 {
		login = strings.TrimSpace(args[0])
	} else {
		creds, err := manager.Retrieve("")
		if err != nil {
			ui.PrintError("No stored credentials found")
			return
		}
		login = creds.Login
	}

	if err := manager.Delete(login); err != nil {
		ui.PrintError("Failed to remove credentials", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Credentials removed for " + login)
}

func runStatus(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	creds, err := manager.Retrieve("")
	if err != nil {
		ui.PrintInfo("Credentials", "none (anonymous access)")
		fmt.Println("\nStore a pair with 'boorudl auth login'.")
		return
	}

	ui.PrintInfo("Login", creds.Login)
	ui.PrintInfo("API key", maskSecret(creds.APIKey))
	if !creds.LastModified.IsZero() {
		ui.PrintInfo("Stored", creds.LastModified.Format("2006-01-02 15:04:05"))
	}
}

// maskSecret keeps just enough of the secret to recognize it
func maskSecret(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// readPassword reads a secret from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
