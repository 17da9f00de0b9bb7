package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haconnect/haconnect-go/internal/config"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Service configuration management commands",
		Long:  "Commands for managing Home Assistant service configurations and their endpoints",
	}

	configListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all configurations",
		RunE:  runConfigList,
	}

	configAddCmd = &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new configuration",
		Long: `Add a new service configuration with one or more endpoints.

Endpoints are given as label=url pairs; the first one becomes the active
endpoint. Static tokens may be literal values or secret references like
${env:HA_TOKEN} and ${keyring:home-token}.

Examples:
  haconnect config add Home --endpoint Internal=http://192.168.1.100:8123 --endpoint External=https://ha.example.com --token '${env:HA_TOKEN}'
  haconnect config add Cabin --method oauth --endpoint Main=https://cabin.example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runConfigAdd,
	}

	configRemoveCmd = &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a configuration",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigRemove,
	}

	configUseCmd = &cobra.Command{
		Use:   "use <name> [endpoint]",
		Short: "Select the active configuration, optionally switching its endpoint",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runConfigUse,
	}

	configExportCmd = &cobra.Command{
		Use:   "export [name]",
		Short: "Export configurations as JSON",
		Long: `Export one configuration, or all of them, as a versioned JSON document
suitable for haconnect config import.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConfigExport,
	}

	configImportCmd = &cobra.Command{
		Use:   "import <file>",
		Short: "Import configurations from a JSON export",
		Long: `Import configurations from a JSON export file. Both the current versioned
format and the legacy single-service format are accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: runConfigImport,
	}

	configAddMethod    string
	configAddEndpoints []string
	configAddToken     string
	configExportOutput string
)

// GetConfigCommand returns the config command for adding to the root command
func GetConfigCommand() *cobra.Command {
	return configCmd
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configRemoveCmd)
	configCmd.AddCommand(configUseCmd)
	configCmd.AddCommand(configExportCmd)
	configCmd.AddCommand(configImportCmd)

	configAddCmd.Flags().StringVar(&configAddMethod, "method", "token", "Authentication method (token, oauth)")
	configAddCmd.Flags().StringArrayVar(&configAddEndpoints, "endpoint", nil, "Endpoint as label=url (repeatable, first becomes active)")
	configAddCmd.Flags().StringVar(&configAddToken, "token", "", "Static API token (token method only)")
	_ = configAddCmd.MarkFlagRequired("endpoint")

	configExportCmd.Flags().StringVarP(&configExportOutput, "output", "o", "", "Write to file instead of stdout")
}

func runConfigList(_ *cobra.Command, _ []string) error {
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
	fmt.Fprintln(w, "NAME\tMETHOD\tENDPOINTS\tACTIVE ENDPOINT\tACTIVE")
	for _, svc := range configs {
		active := ""
		if svc.IsActive {
			active = "*"
		}
		effective := svc.EffectiveEndpoint()
		label := ""
		if effective != nil {
			label = fmt.Sprintf("%s (%s)", effective.Label, effective.BaseURL)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", svc.Name, svc.AuthMethod, len(svc.Endpoints), label, active)
	}
	return w.Flush()
}

func runConfigAdd(_ *cobra.Command, args []string) error {
	name := args[0]

	method := config.AuthMethod(configAddMethod)
	endpoints := make([]config.ConnectionEndpoint, 0, len(configAddEndpoints))
	for _, spec := range configAddEndpoints {
		label, baseURL, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("invalid endpoint %q, expected label=url", spec)
		}
		endpoints = append(endpoints, config.NewConnectionEndpoint(label, baseURL))
	}

	svc := config.NewServiceConfiguration(name, method, endpoints...)
	svc.SharedStaticToken = configAddToken

	if err := config.ValidateServiceConfiguration(svc); err != nil {
		return err
	}

	mgr, _, err := openStorage()
	if err != nil {
		return err
	}
	defer mgr.Close()

	configs, err := mgr.Load()
	if err != nil {
		return err
	}
	if configs.FindByName(name) != nil {
		return fmt.Errorf("a configuration named %q already exists", name)
	}

	// The first configuration becomes active automatically
	if len(configs) == 0 {
		svc.IsActive = true
	}
	configs.Upsert(svc)

	if err := mgr.Save(configs); err != nil {
		return err
	}
	fmt.Printf("Added configuration %q with %d endpoint(s)\n", name, len(svc.Endpoints))
	return nil
}

func runConfigRemove(_ *cobra.Command, args []string) error {
	mgr, _, err := openStorage()
	if err != nil {
		return err
	}
	defer mgr.Close()

	configs, err := mgr.Load()
	if err != nil {
		return err
	}
	svc, err := findConfiguration(configs, args[0])
	if err != nil {
		return err
	}

	configs.Remove(svc.ID)
	if err := mgr.Save(configs); err != nil {
		return err
	}
	if err := mgr.DeleteConfigurationData(svc.ID); err != nil {
		return err
	}
	fmt.Printf("Removed configuration %q\n", svc.Name)
	return nil
}

func runConfigUse(_ *cobra.Command, args []string) error {
	mgr, _, err := openStorage()
	if err != nil {
		return err
	}
	defer mgr.Close()

	configs, err := mgr.Load()
	if err != nil {
		return err
	}
	svc, err := findConfiguration(configs, args[0])
	if err != nil {
		return err
	}

	if err := configs.SetActive(svc.ID); err != nil {
		return err
	}

	if len(args) == 2 {
		var found bool
		for i := range svc.Endpoints {
			if svc.Endpoints[i].Label == args[1] {
				if err := svc.SetActiveEndpoint(svc.Endpoints[i].ID); err != nil {
					return err
				}
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("configuration %q has no endpoint labeled %q", svc.Name, args[1])
		}
	}

	if err := mgr.Save(configs); err != nil {
		return err
	}

	effective := svc.EffectiveEndpoint()
	fmt.Printf("Using %q via %s (%s)\n", svc.Name, effective.Label, effective.BaseURL)
	return nil
}

func runConfigExport(_ *cobra.Command, args []string) error {
	mgr, _, err := openStorage()
	if err != nil {
		return err
	}
	defer mgr.Close()

	configs, err := mgr.Load()
	if err != nil {
		return err
	}

	var data []byte
	if len(args) == 1 {
		svc, err := findConfiguration(configs, args[0])
		if err != nil {
			return err
		}
		data, err = config.ExportConfiguration(svc)
		if err != nil {
			return err
		}
	} else {
		data, err = config.ExportConfigurations(configs)
		if err != nil {
			return err
		}
	}

	if configExportOutput != "" {
		if err := os.WriteFile(configExportOutput, data, 0o600); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Printf("Exported to %s\n", configExportOutput)
		return nil
	}

	fmt.Println(string(data))
	return nil
}

func runConfigImport(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	imported, err := config.ImportConfigurations(data)
	if err != nil {
		return err
	}

	mgr, _, err := openStorage()
	if err != nil {
		return err
	}
	defer mgr.Close()

	configs, err := mgr.Load()
	if err != nil {
		return err
	}

	for _, svc := range imported {
		// Imported configurations never steal the active slot
		svc.IsActive = false
		if existing := configs.FindByName(svc.Name); existing != nil {
			svc.Name = svc.Name + " (imported)"
		}
		configs.Upsert(svc)
	}

	if err := mgr.Save(configs); err != nil {
		return err
	}
	fmt.Printf("Imported %d configuration(s)\n", len(imported))
	return nil
}
