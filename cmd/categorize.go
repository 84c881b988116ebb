package cmd

import (
	"fmt"
	"io"
	"strings"

	"postsorter/pkg/categorizer"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	categorizeTitle string
)

// categorizeCmd categorizes one piece of text and shows every score.
var categorizeCmd = &cobra.Command{
	Use:   "categorize [text]",
	Short: "Categorize a post and show its similarity to each category",
	Long: `Embeds the given text (prefixed with --title, the author's headline, if set)
and prints the cosine similarity against each category prototype. The winner
is highlighted; ties go to the category listed first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		res := appInstance.Categorizer.Categorize(cmd.Context(), categorizer.CategorizationRequest{
			Title: categorizeTitle,
			Body:  strings.Join(args, " "),
		})
		printCategorization(cmd.OutOrStdout(), res)
		return nil
	},
}

func printCategorization(w io.Writer, res categorizer.CategorizationResult) {
	if res.Fallback {
		fmt.Fprintf(w, "%s %s (%v)\n", color.YellowString("Fallback:"), res.Category, res.FallbackReason)
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Similarity"})
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, s := range res.Scores {
		name := s.Category
		if s.Category == res.Category {
			name = color.GreenString(name)
		}
		table.Append([]string{name, fmt.Sprintf("%.4f", s.Similarity)})
	}
	table.Render()
	fmt.Fprintf(w, "\nCategory: %s (confidence %.4f)\n", color.GreenString(res.Category), res.Confidence)
}

func init() {
	rootCmd.AddCommand(categorizeCmd)
	categorizeCmd.Flags().StringVarP(&categorizeTitle, "title", "t", "", "Author headline to prepend to the text")
}
