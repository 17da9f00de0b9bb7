package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/haconnect/haconnect-go/internal/homeassistant"
	"github.com/haconnect/haconnect-go/internal/storage"
)

var (
	historyCmd = &cobra.Command{
		Use:   "history [entity-id]",
		Short: "Show state history",
		Long: `Show state history from the active Home Assistant instance.

Examples:
  haconnect history light.kitchen
  haconnect history light.kitchen --since 24h
  haconnect history --since 1h`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}

	logbookCmd = &cobra.Command{
		Use:   "logbook [entity-id]",
		Short: "Show logbook events",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLogbook,
	}

	historySince time.Duration
	logbookSince time.Duration
)

func GetHistoryCommand() *cobra.Command { return historyCmd }
func GetLogbookCommand() *cobra.Command { return logbookCmd }

func init() {
	historyCmd.Flags().DurationVar(&historySince, "since", time.Hour, "How far back to look")
	logbookCmd.Flags().DurationVar(&logbookSince, "since", time.Hour, "How far back to look")
}

func runHistory(_ *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *homeassistant.Client, _ *storage.Manager) error {
		entityID := ""
		if len(args) == 1 {
			entityID = args[0]
		}

		history, err := client.History(ctx, time.Now().Add(-historySince), entityID)
		if err != nil {
			return err
		}

		w := newTabWriter()
		fmt.Fprintln(w, "TIME\tENTITY\tSTATE")
		for _, states := range history {
			for i := range states {
				s := &states[i]
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.LastChanged.Local().Format("2006-01-02 15:04:05"), s.EntityID, s.State)
			}
		}
		return w.Flush()
	})
}

func runLogbook(_ *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *homeassistant.Client, _ *storage.Manager) error {
		entityID := ""
		if len(args) == 1 {
			entityID = args[0]
		}

		entries, err := client.Logbook(ctx, time.Now().Add(-logbookSince), entityID)
		if err != nil {
			return err
		}

		w := newTabWriter()
		fmt.Fprintln(w, "TIME\tNAME\tMESSAGE")
		for i := range entries {
			e := &entries[i]
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.When.Local().Format("2006-01-02 15:04:05"), e.Name, e.Message)
		}
		return w.Flush()
	})
}
