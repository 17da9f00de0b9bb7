package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/haconnect/haconnect-go/internal/homeassistant"
	"github.com/haconnect/haconnect-go/internal/storage"
)

var (
	entitiesCmd = &cobra.Command{
		Use:   "entities",
		Short: "List entities of the active configuration",
		Long: `List entity states from the active Home Assistant instance.

By default the saved entity selection applies; use --all to bypass it.

Examples:
  haconnect entities
  haconnect entities --controllable
  haconnect entities --tab Lights
  haconnect entities --all`,
		RunE: runEntities,
	}

	toggleCmd = &cobra.Command{
		Use:   "toggle <entity-id>",
		Short: "Toggle an entity between on and off",
		Args:  cobra.ExactArgs(1),
		RunE:  runToggle,
	}

	onCmd = &cobra.Command{
		Use:   "on <entity-id>",
		Short: "Turn an entity on",
		Long: `Turn an entity on. Lights accept --brightness (0-255).

Examples:
  haconnect on light.kitchen
  haconnect on light.kitchen --brightness 128`,
		Args: cobra.ExactArgs(1),
		RunE: runOn,
	}

	offCmd = &cobra.Command{
		Use:   "off <entity-id>",
		Short: "Turn an entity off",
		Args:  cobra.ExactArgs(1),
		RunE:  runOff,
	}

	callCmd = &cobra.Command{
		Use:   "call <domain> <service>",
		Short: "Call an arbitrary Home Assistant service",
		Long: `Call a Home Assistant service with optional JSON service data.

Examples:
  haconnect call light turn_on --data '{"entity_id":"light.kitchen","brightness":200}'
  haconnect call climate set_hvac_mode --data '{"entity_id":"climate.living_room","hvac_mode":"heat"}'`,
		Args: cobra.ExactArgs(2),
		RunE: runCall,
	}

	entitiesControllable bool
	entitiesAll          bool
	entitiesTab          string
	onBrightness         int
	callData             string

	apiTimeout = 30 * time.Second
)

func GetEntitiesCommand() *cobra.Command { return entitiesCmd }
func GetToggleCommand() *cobra.Command   { return toggleCmd }
func GetOnCommand() *cobra.Command       { return onCmd }
func GetOffCommand() *cobra.Command      { return offCmd }
func GetCallCommand() *cobra.Command     { return callCmd }

func init() {
	entitiesCmd.Flags().BoolVar(&entitiesControllable, "controllable", false, "Only show controllable entities")
	entitiesCmd.Flags().BoolVar(&entitiesAll, "all", false, "Ignore the saved entity selection")
	entitiesCmd.Flags().StringVar(&entitiesTab, "tab", "", "Show only entities of a custom tab")

	onCmd.Flags().IntVar(&onBrightness, "brightness", -1, "Light brightness (0-255)")

	callCmd.Flags().StringVar(&callData, "data", "", "Service data as JSON")
}

// withClient runs fn with a client for the active configuration.
func withClient(fn func(ctx context.Context, client *homeassistant.Client, mgr *storage.Manager) error) error {
	mgr, _, err := openStorage()
	if err != nil {
		return err
	}
	defer mgr.Close()

	svc, _, err := activeConfiguration(mgr)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
	defer cancel()

	return fn(ctx, newAPIClient(svc), mgr)
}

func runEntities(_ *cobra.Command, _ []string) error {
	return withClient(func(ctx context.Context, client *homeassistant.Client, mgr *storage.Manager) error {
		svc, _, err := activeConfiguration(mgr)
		if err != nil {
			return err
		}

		entities, err := client.States(ctx)
		if err != nil {
			return err
		}

		if entitiesTab != "" {
			tabs, err := mgr.LoadTabs(svc.ID)
			if err != nil {
				return err
			}
			var tabIDs []string
			for i := range tabs {
				if tabs[i].Name == entitiesTab {
					tabIDs = tabs[i].EntityIDs
					break
				}
			}
			if tabIDs == nil {
				return fmt.Errorf("no tab named %q", entitiesTab)
			}
			entities = homeassistant.FilterByIDs(entities, tabIDs)
		} else if !entitiesAll {
			selection, err := mgr.LoadSelectedEntities(svc.ID)
			if err != nil {
				return err
			}
			entities = homeassistant.FilterSelected(entities, selection)
		}

		if entitiesControllable {
			entities = homeassistant.FilterControllable(entities)
		}
		homeassistant.SortByFriendlyName(entities)

		w := newTabWriter()
		fmt.Fprintln(w, "ENTITY\tNAME\tSTATE\tUNIT")
		for i := range entities {
			e := &entities[i]
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.EntityID, e.FriendlyName(), e.State, e.Unit())
		}
		return w.Flush()
	})
}

func runToggle(_ *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *homeassistant.Client, _ *storage.Manager) error {
		entity, err := client.State(ctx, args[0])
		if err != nil {
			return err
		}
		if !entity.IsControllable() {
			return fmt.Errorf("entity %s is not controllable", entity.EntityID)
		}
		if err := client.Toggle(ctx, entity); err != nil {
			return err
		}
		fmt.Printf("Toggled %s\n", entity.EntityID)
		return nil
	})
}

func runOn(_ *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *homeassistant.Client, _ *storage.Manager) error {
		entityID := args[0]
		var err error
		if onBrightness >= 0 {
			err = client.TurnOnWithBrightness(ctx, entityID, onBrightness)
		} else {
			err = client.TurnOn(ctx, entityID)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Turned on %s\n", entityID)
		return nil
	})
}

func runOff(_ *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *homeassistant.Client, _ *storage.Manager) error {
		if err := client.TurnOff(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Turned off %s\n", args[0])
		return nil
	})
}

func runCall(_ *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *homeassistant.Client, _ *storage.Manager) error {
		var data map[string]any
		if callData != "" {
			if err := json.Unmarshal([]byte(callData), &data); err != nil {
				return fmt.Errorf("invalid --data JSON: %w", err)
			}
		}
		if err := client.CallService(ctx, args[0], args[1], data); err != nil {
			return err
		}
		fmt.Printf("Called %s.%s\n", args[0], args[1])
		return nil
	})
}
