package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"dbusexplorer/internal/codec"
	"dbusexplorer/internal/domain"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the public names on the bus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := app.explorer().ListServiceNames(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(app.out, name)
			}
			return nil
		},
	}
}

func newDiscoverCmd(app *App) *cobra.Command {
	var filter, output string

	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "Walk every service on the bus",
		Example: `  dbus-explorer discover --filter NetworkManager
  dbus-explorer discover --bus session --output yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			services, err := app.explorer().DiscoverAll(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return writeServices(app.out, services, output)
		},
	}

	discoverCmd.Flags().StringVar(&filter, "filter", "", "only walk names containing this substring")
	discoverCmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table, json or yaml")
	return discoverCmd
}

func newServiceCmd(app *App) *cobra.Command {
	var output string

	serviceCmd := &cobra.Command{
		Use:   "service NAME",
		Short: "Walk one service and print its objects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			record, err := app.explorer().DiscoverOne(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == outputTable {
				return writeObjects(app.out, record)
			}
			return writeServices(app.out, []domain.ServiceRecord{record}, output)
		},
	}

	serviceCmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table, json or yaml")
	return serviceCmd
}

func checkOutput(output string) error {
	switch output {
	case outputTable, outputJSON, outputYAML:
		return nil
	}
	return errors.Errorf("unsupported output format %q", output)
}

func writeServices(w io.Writer, services []domain.ServiceRecord, output string) error {
	if output != outputTable {
		exporter, err := codec.ExporterFor(output)
		if err != nil {
			return err
		}
		return exporter.Export(services, w)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"service", "owner", "objects", "failed", "error"})
	for _, svc := range services {
		errText := ""
		if svc.Error != nil {
			errText = svc.Error.Error()
		}
		table.Append([]string{
			svc.Name,
			svc.Owner,
			strconv.Itoa(len(svc.SortedObjects())),
			strconv.Itoa(len(svc.FailedObjects())),
			errText,
		})
	}
	table.Render()
	return nil
}

func writeObjects(w io.Writer, record domain.ServiceRecord) error {
	if record.Owner != "" {
		fmt.Fprintf(w, "%s (owner %s)\n", record.Name, record.Owner)
	} else {
		fmt.Fprintln(w, record.Name)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"path", "interfaces", "status"})
	for _, obj := range record.SortedObjects() {
		names := make([]string, 0, len(obj.Interfaces))
		for _, iface := range obj.Interfaces {
			if iface.HasContent() {
				names = append(names, iface.Name)
			}
		}
		status := "ok"
		if !obj.HasContent() {
			status = "navigation only"
		}
		table.Append([]string{obj.Path, strings.Join(names, "\n"), status})
	}
	for _, obj := range record.FailedObjects() {
		table.Append([]string{obj.Path, "", obj.Error.Error()})
	}
	table.Render()
	return nil
}
