package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newDiscoveryCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newSitesCommand(ctx),
		newAreasCommand(ctx),
		newLinesCommand(ctx),
		newMachinesCommand(ctx),
		newDispatchTypesCommand(ctx),
	}
}

func newSitesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List the sites visible to the configured API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dispatchClient()
			if err != nil {
				return err
			}
			sites, err := client.Sites(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, sites)
			}
			if len(sites) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sites visible")
				return nil
			}
			rows := make([][]string, 0, len(sites))
			for _, site := range sites {
				rows = append(rows, []string{
					strconv.FormatInt(site.ID, 10), site.Code, site.Description, site.Timezone,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Code", "Description", "Timezone"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newAreasCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "areas",
		Short: "List areas within the configured site",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dispatchClient()
			if err != nil {
				return err
			}
			areas, err := client.Areas(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, areas)
			}
			if len(areas) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No areas in site %d\n", client.Site())
				return nil
			}
			rows := make([][]string, 0, len(areas))
			for _, area := range areas {
				rows = append(rows, []string{
					strconv.FormatInt(area.ID, 10), area.Code, area.Description,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Code", "Description"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newLinesCommand(ctx *commandContext) *cobra.Command {
	var areaID int64
	cmd := &cobra.Command{
		Use:   "lines",
		Short: "List production lines within an area",
		RunE: func(cmd *cobra.Command, args []string) error {
			if areaID < 1 {
				return errors.New("--area is required; list area ids with `shiftwalk areas`")
			}
			client, err := ctx.dispatchClient()
			if err != nil {
				return err
			}
			lines, err := client.Lines(cmd.Context(), areaID)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, lines)
			}
			if len(lines) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No lines in area %d\n", areaID)
				return nil
			}
			rows := make([][]string, 0, len(lines))
			for _, line := range lines {
				rows = append(rows, []string{
					strconv.FormatInt(line.ID, 10), line.Code, line.Description,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Code", "Description"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().Int64Var(&areaID, "area", 0, "Area id to list lines for")
	return cmd
}

func newMachinesCommand(ctx *commandContext) *cobra.Command {
	var lineID int64
	cmd := &cobra.Command{
		Use:   "machines",
		Short: "List machines on a production line",
		RunE: func(cmd *cobra.Command, args []string) error {
			if lineID < 1 {
				return errors.New("--line is required; list line ids with `shiftwalk lines --area <id>`")
			}
			client, err := ctx.dispatchClient()
			if err != nil {
				return err
			}
			machines, err := client.Machines(cmd.Context(), lineID)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, machines)
			}
			if len(machines) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No machines on line %d\n", lineID)
				return nil
			}
			rows := make([][]string, 0, len(machines))
			for _, machine := range machines {
				rows = append(rows, []string{
					strconv.FormatInt(machine.ID, 10), machine.Code, machine.Description,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Code", "Description"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().Int64Var(&lineID, "line", 0, "Line id to list machines for")
	return cmd
}

func newDispatchTypesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "dispatch-types",
		Aliases: []string{"dispatchtypes"},
		Short:   "List the dispatch types defined on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.dispatchClient()
			if err != nil {
				return err
			}
			types, err := client.DispatchTypes(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, types)
			}
			if len(types) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No dispatch types defined")
				return nil
			}
			rows := make([][]string, 0, len(types))
			for _, dt := range types {
				rows = append(rows, []string{
					strconv.FormatInt(dt.ID, 10), dt.Code, dt.Description,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Code", "Description"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
