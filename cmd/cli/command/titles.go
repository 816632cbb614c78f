package command

import (
	"fmt"
	"os"
	"text/tabwriter"

	"movietracker/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

// titles.go: the films bundled inside an item.

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "Manage the films bundled in an item",
}

var titlesListCmd = &cobra.Command{
	Use:   "list ITEM_ID",
	Short: "List the titles of an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		titles, err := c.ListTitles(cmd.Context(), itemID)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tCOVER")
		for _, t := range titles {
			fmt.Fprintf(w, "%d\t%s\t%s\n", t.ID, deref(t.Title), deref(t.CoverImageURL))
		}
		return w.Flush()
	},
}

var titlesAddCmd = &cobra.Command{
	Use:   "add ITEM_ID",
	Short: "Add a title to an item (administrator)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := parseID(args[0])
		if err != nil {
			return err
		}
		title, _ := cmd.Flags().GetString("title")
		cover, _ := cmd.Flags().GetString("cover")

		c, err := newClient()
		if err != nil {
			return err
		}
		id, err := c.AddTitle(cmd.Context(), itemID, dto.ConstituentTitleRequest{Title: title, CoverImageURL: cover})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Added title %d\n", id)
		return nil
	},
}

var titlesRmCmd = &cobra.Command{
	Use:   "rm TITLE_ID",
	Short: "Remove a title (administrator)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		deleted, err := c.DeleteTitle(cmd.Context(), id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			fmt.Println("✓ Nothing to remove")
			return nil
		}
		fmt.Println("✓ Removed")
		return nil
	},
}

func init() {
	titlesCmd.AddCommand(titlesListCmd, titlesAddCmd, titlesRmCmd)

	titlesAddCmd.Flags().String("title", "", "film title")
	titlesAddCmd.Flags().String("cover", "", "cover image URL")
	titlesAddCmd.MarkFlagRequired("title")
	titlesAddCmd.MarkFlagRequired("cover")
}
