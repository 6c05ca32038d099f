package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dl-alexandre/gdm/internal/auth"
	"github.com/dl-alexandre/gdm/internal/config"
	"github.com/dl-alexandre/gdm/internal/types"
	"github.com/dl-alexandre/gdm/internal/utils"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Manage authentication with the Google Drive API",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with Google Drive",
	Long:  "Initiate the OAuth2 authentication flow to obtain credentials",
	RunE:  runAuthLogin,
}

var authServiceAccountCmd = &cobra.Command{
	Use:   "service-account",
	Short: "Authenticate with a service account",
	Long:  "Load service account credentials from a JSON key file",
	RunE:  runAuthServiceAccount,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long:  "Display current authentication status and credential information",
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	Long:  "Delete stored credentials for the current or specified profile",
	RunE:  runAuthLogout,
}

var (
	authClientSecret string
	authKeyFile      string
)

func init() {
	authLoginCmd.Flags().StringVar(&authClientSecret, "client-secret", "", "Path to OAuth client secret JSON file")
	authServiceAccountCmd.Flags().StringVar(&authKeyFile, "key-file", "", "Path to service account JSON key file (required)")
	_ = authServiceAccountCmd.MarkFlagRequired("key-file")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authServiceAccountCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return writeCommandError(out, "auth.login", err)
	}

	secretPath := authClientSecret
	if secretPath == "" {
		secretPath = cfg.ClientSecretPath
	}
	if secretPath == "" {
		secretPath = os.Getenv(config.EnvPrefix + "CLIENT_SECRET")
	}
	if secretPath == "" {
		return out.WriteError("auth.login", utils.NewCLIError(utils.ErrCodeAuthClientMissing,
			"OAuth client secret required. Set via --client-secret or "+config.EnvPrefix+"CLIENT_SECRET").
			Build())
	}

	oauthCfg, err := auth.LoadOAuthConfig(secretPath, utils.ScopesMirror)
	if err != nil {
		return out.WriteError("auth.login", utils.NewCLIError(utils.ErrCodeAuthClientMissing, err.Error()).Build())
	}

	out.Log("Open this URL in your browser and authorize access:")
	out.Log("%s", auth.AuthURL(oauthCfg))
	out.Log("Then paste the authorization code here:")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return out.WriteError("auth.login", utils.NewCLIError(utils.ErrCodeAuthRequired,
			fmt.Sprintf("failed to read authorization code: %v", err)).Build())
	}
	code = strings.TrimSpace(code)

	token, err := auth.ExchangeCode(ctx, oauthCfg, code)
	if err != nil {
		return out.WriteError("auth.login", utils.NewCLIError(utils.ErrCodeAuthRequired, err.Error()).Build())
	}

	cfg.ClientSecretPath = secretPath
	if err := cfg.Save(); err != nil {
		out.AddWarning("CONFIG_WRITE_FAILED", err.Error(), "warning")
	}

	mgr, err := getAuthManager(cfg)
	if err != nil {
		return writeCommandError(out, "auth.login", err)
	}

	creds := &types.Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiryDate:   token.Expiry,
		Scopes:       utils.ScopesMirror,
		Type:         types.AuthTypeOAuth,
	}
	if err := mgr.SaveCredentials(flags.Profile, creds); err != nil {
		return writeCommandError(out, "auth.login", err)
	}

	out.Log("Successfully authenticated!")
	return out.WriteSuccess("auth.login", map[string]interface{}{
		"profile": flags.Profile,
		"scopes":  creds.Scopes,
		"expiry":  creds.ExpiryDate.Format(time.RFC3339),
	})
}

func runAuthServiceAccount(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)
	ctx := cmd.Context()

	source, err := auth.LoadServiceAccount(ctx, authKeyFile)
	if err != nil {
		return out.WriteError("auth.service-account", utils.NewCLIError(utils.ErrCodeAuthRequired, err.Error()).Build())
	}

	token, err := source.Token()
	if err != nil {
		return out.WriteError("auth.service-account", utils.NewCLIError(utils.ErrCodeAuthRequired, err.Error()).Build())
	}

	cfg, err := config.Load()
	if err != nil {
		return writeCommandError(out, "auth.service-account", err)
	}

	mgr, err := getAuthManager(cfg)
	if err != nil {
		return writeCommandError(out, "auth.service-account", err)
	}

	creds := &types.Credentials{
		AccessToken: token.AccessToken,
		ExpiryDate:  token.Expiry,
		Scopes:      utils.ScopesMirror,
		Type:        types.AuthTypeServiceAccount,
	}
	if err := mgr.SaveCredentials(flags.Profile, creds); err != nil {
		return writeCommandError(out, "auth.service-account", err)
	}

	out.Log("Service account credentials stored for profile: %s", flags.Profile)
	return out.WriteSuccess("auth.service-account", map[string]interface{}{
		"profile": flags.Profile,
		"type":    types.AuthTypeServiceAccount,
		"expiry":  creds.ExpiryDate.Format(time.RFC3339),
	})
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	cfg, err := config.Load()
	if err != nil {
		return writeCommandError(out, "auth.status", err)
	}

	mgr, err := getAuthManager(cfg)
	if err != nil {
		return writeCommandError(out, "auth.status", err)
	}

	creds, err := mgr.LoadCredentials(flags.Profile)
	if err != nil {
		return out.WriteSuccess("auth.status", map[string]interface{}{
			"profile":       flags.Profile,
			"authenticated": false,
		})
	}

	expired := time.Now().After(creds.ExpiryDate)
	return out.WriteSuccess("auth.status", map[string]interface{}{
		"profile":       flags.Profile,
		"authenticated": !expired || creds.RefreshToken != "",
		"scopes":        creds.Scopes,
		"expiry":        creds.ExpiryDate.Format(time.RFC3339),
		"type":          creds.Type,
		"needsRefresh":  mgr.NeedsRefresh(creds),
		"expired":       expired,
	})
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	cfg, err := config.Load()
	if err != nil {
		return writeCommandError(out, "auth.logout", err)
	}

	mgr, err := getAuthManager(cfg)
	if err != nil {
		return writeCommandError(out, "auth.logout", err)
	}

	if err := mgr.DeleteCredentials(flags.Profile); err != nil {
		return out.WriteError("auth.logout", utils.NewCLIError(utils.ErrCodeAuthRequired,
			fmt.Sprintf("No credentials found for profile '%s'", flags.Profile)).Build())
	}

	out.Log("Credentials removed for profile: %s", flags.Profile)
	return out.WriteSuccess("auth.logout", map[string]interface{}{
		"profile": flags.Profile,
		"status":  "logged_out",
	})
}
