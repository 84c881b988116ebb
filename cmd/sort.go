package cmd

import (
	"fmt"
	"io"
	"strconv"

	"postsorter/internal/app"
	"postsorter/internal/clix"
	"postsorter/internal/fileingest"
	"postsorter/internal/textprep"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// sortCmd saves every post in a file and shows where each one was filed.
var sortCmd = &cobra.Command{
	Use:   "sort <posts.json|dir>",
	Short: "Save the posts in a JSON file (or directory) and list the folders",
	Long: `Reads feed posts from a JSON file holding an array of posts (or a
directory of such files), saves each one through the categorization
workflow, and prints the saved posts and a per-folder summary.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		pagination, err := clix.ParsePagination(cmd.Flags())
		if err != nil {
			return fmt.Errorf("invalid pagination flags: %w", err)
		}

		posts, err := fileingest.ReadPosts(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to read posts: %w", err)
		}
		if len(posts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No posts found.")
			return nil
		}

		failed := 0
		for _, p := range posts {
			if _, err := appInstance.SavedPostsService.SavePost(cmd.Context(), p); err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "  - post %d: %s %v\n", p.ID, color.RedString("ERROR"), err)
			}
		}

		w := cmd.OutOrStdout()
		if err := printSaved(cmd, appInstance, pagination); err != nil {
			return err
		}
		if err := printFolders(cmd, appInstance); err != nil {
			return err
		}
		printUsage(cmd, w, appInstance)

		fmt.Fprintf(w, "\nSaved %d of %d posts.\n", len(posts)-failed, len(posts))
		return nil
	},
}

func printSaved(cmd *cobra.Command, a *app.App, p clix.PaginationParams) error {
	saved, err := a.SavedPostsService.SavedPosts(cmd.Context(), p.Limit, p.Offset)
	if err != nil {
		return fmt.Errorf("failed to list saved posts: %w", err)
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"ID", "Author", "Folder", "Content"})
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, sp := range saved {
		folder := sp.Folder
		if sp.Fallback {
			folder = color.YellowString(folder + " (fallback)")
		}
		table.Append([]string{
			strconv.FormatInt(sp.Post.ID, 10),
			sp.Post.Author.Name,
			folder,
			textprep.Snippet(sp.Post.Content, 50),
		})
	}
	table.Render()
	return nil
}

func printFolders(cmd *cobra.Command, a *app.App) error {
	folders, err := a.SavedPostsService.CategorizedPosts(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list folders: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout())
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Folder", "Posts"})
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, f := range folders {
		table.Append([]string{f.Folder.Name, strconv.Itoa(len(f.Posts))})
	}
	table.Render()
	return nil
}

func printUsage(cmd *cobra.Command, w io.Writer, a *app.App) {
	s, err := a.CostTracker.Summary(cmd.Context())
	if err != nil || s.Calls == 0 {
		return
	}
	fmt.Fprintln(w, "\nEmbedding API usage:")
	fmt.Fprintf(w, "  Calls:        %d\n", s.Calls)
	fmt.Fprintf(w, "  Input tokens: %d\n", s.InputTokens)
	fmt.Fprintf(w, "  Total cost:   $%.6f\n", s.TotalCost)
}

func init() {
	rootCmd.AddCommand(sortCmd)
	clix.AddPaginationFlags(sortCmd.Flags(), 50)
}
