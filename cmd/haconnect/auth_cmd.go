package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/haconnect/haconnect-go/internal/auth"
	"github.com/haconnect/haconnect-go/internal/config"
)

var (
	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Authentication management commands",
		Long:  "Commands for authenticating against Home Assistant instances with OAuth and PKCE",
	}

	authLoginCmd = &cobra.Command{
		Use:   "login [configuration]",
		Short: "Run the OAuth login flow for a configuration",
		Long: `Run the OAuth authorization flow for an OAuth-based configuration.

A browser window opens for each distinct endpoint URL; endpoints sharing the
same URL are authenticated in one round and share the resulting token. Tokens
are only persisted when every endpoint authenticated successfully.

Examples:
  haconnect auth login
  haconnect auth login Cabin
  haconnect auth login --timeout=10m`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAuthLogin,
	}

	authStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show credential status for every configuration",
		RunE:  runAuthStatus,
	}

	authCallbackCmd = &cobra.Command{
		Use:   "callback <redirect-url>",
		Short: "Forward an OAuth redirect to a waiting login",
		Long: `Forward a haconnect:// redirect URL to the login flow waiting in another
process. The OS invokes this command when it dispatches the custom URL scheme;
it can also be run by hand with the copied redirect URL.`,
		Args: cobra.ExactArgs(1),
		RunE: runAuthCallback,
	}

	authTimeout time.Duration
)

// GetAuthCommand returns the auth command for adding to the root command
func GetAuthCommand() *cobra.Command {
	return authCmd
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authCallbackCmd)

	authLoginCmd.Flags().DurationVar(&authTimeout, "timeout", 5*time.Minute, "Authentication timeout")
}

func runAuthLogin(_ *cobra.Command, args []string) error {
	mgr, appCfg, err := openStorage()
	if err != nil {
		return err
	}
	defer mgr.Close()

	var svc *config.ServiceConfiguration
	var configs config.Collection
	if len(args) == 1 {
		configs, err = mgr.Load()
		if err != nil {
			return err
		}
		svc, err = findConfiguration(configs, args[0])
		if err != nil {
			return err
		}
	} else {
		svc, configs, err = activeConfiguration(mgr)
		if err != nil {
			return err
		}
	}

	if svc.AuthMethod != config.AuthMethodOAuth {
		return fmt.Errorf("configuration %q uses a static token; nothing to log in to", svc.Name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	presenter := auth.NewBrowserPresenter(appCfg.DataDir, zap.L().Named("auth"))
	authenticator := auth.NewAuthenticator(presenter, zap.L().Named("auth"))

	fmt.Printf("Starting OAuth login for %q...\n", svc.Name)
	updated, err := authenticator.AuthenticateConfiguration(ctx, svc)
	if err != nil {
		if errors.Is(err, auth.ErrCancelled) {
			return fmt.Errorf("login cancelled: %w", err)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	configs.Upsert(updated)
	if err := mgr.Save(configs); err != nil {
		return fmt.Errorf("failed to persist tokens: %w", err)
	}

	fmt.Printf("Authenticated %d endpoint(s) for %q\n", len(updated.Endpoints), updated.Name)
	return nil
}

func runAuthStatus(_ *cobra.Command, _ []string) error {
	mgr, _, err := openStorage()
	if err != nil {
		return err
	}
	defer mgr.Close()

	configs, err := mgr.Load()
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		fmt.Println("No configurations found")
		return nil
	}

	w := newTabWriter()
	fmt.Fprintln(w, "CONFIGURATION\tMETHOD\tENDPOINT\tCREDENTIALS")
	for _, svc := range configs {
		for i := range svc.Endpoints {
			ep := &svc.Endpoints[i]
			status := credentialStatus(svc, ep)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", svc.Name, svc.AuthMethod, ep.Label, status)
		}
	}
	return w.Flush()
}

func credentialStatus(svc *config.ServiceConfiguration, ep *config.ConnectionEndpoint) string {
	switch svc.AuthMethod {
	case config.AuthMethodToken:
		if svc.SharedStaticToken != "" {
			return "token set"
		}
		return "missing"
	case config.AuthMethodOAuth:
		if ep.OAuthToken != "" {
			return "authenticated"
		}
		return "not authenticated"
	}
	return "unknown"
}

func runAuthCallback(_ *cobra.Command, args []string) error {
	appCfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	if err := auth.ForwardRedirect(appCfg.DataDir, args[0]); err != nil {
		return err
	}
	fmt.Println("Callback delivered")
	return nil
}
