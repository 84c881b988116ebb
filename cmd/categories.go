package cmd

import (
	"fmt"

	"postsorter/pkg/categorizer"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the category folders and their prototype descriptions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"#", "Category", "Description"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetColWidth(80)

		for i, c := range categorizer.Categories() {
			table.Append([]string{fmt.Sprint(i + 1), c.Name, c.Description})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
