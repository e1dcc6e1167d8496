package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// secretKeys are masked when displayed.
var secretKeys = map[string]bool{
	"export.drive_token": true,
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in the config file.

Run without a subcommand to list every setting.`,
	RunE: runSettingsShow,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Parses and stores a single setting. Lists such as stores.names take a
comma-separated value.

Examples:
  pricecollect settings set storage.backend redis
  pricecollect settings set stores.names "Drogasil, Pague Menos"`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Store the Google Drive access token",
	Long:  `Prompts for the Drive access token without echoing it and stores it.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsToken,
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsTokenCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if services.Settings == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	section := ""
	for _, key := range services.Settings.Keys() {
		if prefix, _, ok := strings.Cut(key, "."); ok && prefix != section {
			section = prefix
			cmd.Printf("\n[%s]\n", section)
		}
		value, _ := services.Settings.GetValue(key)
		cmd.Printf("  %s = %s\n", key, displayValue(key, value))
	}
	cmd.Println()

	if err := services.Settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if services.Settings == nil {
		return errors.New("settings service not configured")
	}
	value, ok := services.Settings.GetValue(args[0])
	if !ok {
		return fmt.Errorf("unknown setting %q", args[0])
	}
	cmd.Println(displayValue(args[0], value))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if services.Settings == nil {
		return errors.New("settings service not configured")
	}
	if err := services.Settings.SetValue(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	value, _ := services.Settings.GetValue(args[0])
	cmd.Printf("%s = %s\n", args[0], displayValue(args[0], value))
	return nil
}

func runSettingsToken(cmd *cobra.Command, _ []string) error {
	if services.Settings == nil {
		return errors.New("settings service not configured")
	}
	cmd.Print("Drive access token: ")
	token := readPassword()
	cmd.Println()
	if token == "" {
		return errors.New("no token entered")
	}
	if err := services.Settings.SetValue("export.drive_token", token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	cmd.Printf("Stored token %s\n", maskSecret(token))
	return nil
}

func displayValue(key string, value any) string {
	var s string
	switch v := value.(type) {
	case nil:
		s = ""
	case []string:
		s = strings.Join(v, ", ")
	default:
		s = fmt.Sprint(v)
	}
	if secretKeys[key] {
		if s == "" {
			return "(not set)"
		}
		return maskSecret(s)
	}
	return s
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
