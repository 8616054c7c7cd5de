package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vkprofiler/pkg/auth"
	"vkprofiler/pkg/ui"
)

// defaultClientID is the standalone application used for the token link
const defaultClientID = "2685278"

var clientID string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage VK access tokens",
	Long: `Manage stored VK access tokens.

Tokens are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - VKPROFILER_ACCESS_TOKEN (read-only)

Never share your access token or config files!`,
}

var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store a VK access token securely",
	Long: `Store a VK access token in the system keychain or encrypted file.

Open the printed link, allow access, then paste either the token or the whole
address of the page VK redirects you to.`,
	Example: `  # Store the default token
  vkprofiler auth login

  # Store a named token for a separate app
  vkprofiler auth login research --client-id 51234567`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Remove a stored token",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"list"},
	Short:   "List stored tokens",
	Long:    `List stored tokens with masked values, newest first.`,
	RunE:    runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)

	loginCmd.Flags().StringVar(&clientID, "client-id", defaultClientID, "VK application id used for the authorization link")
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	name := auth.DefaultName
	if len(args) > 0 {
		name = strings.TrimSpace(args[0])
	}

	reader := bufio.NewReader(os.Stdin)

	if existing, _ := manager.Retrieve(name); existing != nil && !existing.LastModified.IsZero() {
		fmt.Printf("Token '%s' already exists. Replace it? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	auth.ShowTokenGuide(os.Stdout, clientID)

	fmt.Print("Access token or redirect address (hidden): ")
	input, err := readSecret(reader)
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}

	token, err := auth.ParseToken(input)
	if err != nil {
		return err
	}
	token.Name = name

	if err := manager.Store(token); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Token saved: %s", name))
	if token.UserID != 0 {
		ui.PrintInfo("VK user", fmt.Sprintf("id%d", token.UserID))
	}
	fmt.Println("\nCompare users with:")
	fmt.Println("  vkprofiler compare <new-user> --reference user1,user2")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	name := auth.DefaultName
	if len(args) > 0 {
		name = args[0]
	}

	if err := manager.Delete(name); err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			ui.PrintWarning("No stored token", name)
			return nil
		}
		return fmt.Errorf("failed to remove token: %w", err)
	}
	ui.PrintSuccess("Token removed: " + name)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	tokens, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list tokens: %w", err)
	}
	if len(tokens) == 0 {
		ui.PrintInfo("No stored tokens", "Use 'vkprofiler auth login' to add one")
		return nil
	}

	ui.PrintHighlight("Stored Tokens")
	fmt.Println()
	for i, token := range tokens {
		masked := auth.Sanitize(token)
		fmt.Printf("%d. Name: %s\n", i+1, masked.Name)
		fmt.Printf("   Token: %s\n", masked.AccessToken)
		if masked.UserID != 0 {
			fmt.Printf("   User: id%d\n", masked.UserID)
		}
		if masked.LastModified.IsZero() {
			fmt.Printf("   Source: %s\n", auth.AccessTokenEnv)
		} else {
			fmt.Printf("   Last Modified: %s\n", masked.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
	}
	return nil
}

// readSecret reads a line without echo when stdin is a terminal
func readSecret(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
