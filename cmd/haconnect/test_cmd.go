package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haconnect/haconnect-go/internal/homeassistant"
	"github.com/haconnect/haconnect-go/internal/storage"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection of the active configuration",
	Long: `Check that the effective endpoint of the active configuration is reachable
and that its credentials are accepted.`,
	RunE: runTest,
}

func GetTestCommand() *cobra.Command { return testCmd }

func runTest(_ *cobra.Command, _ []string) error {
	return withClient(func(ctx context.Context, client *homeassistant.Client, mgr *storage.Manager) error {
		svc, _, err := activeConfiguration(mgr)
		if err != nil {
			return err
		}

		ep := svc.EffectiveEndpoint()
		fmt.Printf("Testing %q via %s (%s)...\n", svc.Name, ep.Label, ep.BaseURL)
		if err := client.TestConnection(ctx); err != nil {
			return fmt.Errorf("connection test failed: %w", err)
		}
		fmt.Println("Connection OK")
		return nil
	})
}
