package command

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"movietracker/cmd/cli/command/client"
	"movietracker/internal/microservices/http-api/dto"
	"movietracker/internal/microservices/http-api/models"

	"github.com/spf13/cobra"
)

// items.go: browse and edit catalog items.

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Browse and manage catalog items",
}

// list filters map 1:1 onto the API's query parameters
var listFilterFlags = []string{"title", "format", "case_type", "digital_type", "is_3d", "status", "sort", "order", "page"}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items, 25 per page",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		for _, name := range listFilterFlags {
			if v, _ := cmd.Flags().GetString(name); v != "" {
				params.Set(name, v)
			}
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		res, err := c.ListItems(cmd.Context(), params)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tFORMAT\tCASE\tSTATUS\tWATCHED")
		for _, it := range res.Data {
			watched := "-"
			if it.WatchOrder != nil {
				watched = "#" + strconv.FormatInt(*it.WatchOrder, 10)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Title, it.Format, it.CaseType, it.Status, watched)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("page %d of %d (%d items)\n", res.Pagination.Page, res.Pagination.MaxPage, res.Pagination.Total)
		return nil
	},
}

var itemsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one item and its bundled titles",
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
		item, err := c.GetItem(cmd.Context(), id)
		if err != nil {
			return err
		}
		printItem(item)
		return nil
	},
}

var itemsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an item (administrator)",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := dto.CatalogItemRequest{
			Format:      models.FormatBluRay,
			Is3D:        models.No,
			DigitalType: models.DigitalNone,
			CaseType:    models.CasePlain,
			Status:      models.StatusOwned,
			Watched:     models.No,
		}
		applyItemFlags(cmd, &req)

		c, err := newClient()
		if err != nil {
			return err
		}
		id, err := c.CreateItem(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Added item %d\n", id)
		return nil
	},
}

var itemsEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change fields of an item (administrator); unspecified fields keep their value",
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
		current, err := c.GetItem(cmd.Context(), id)
		if err != nil {
			return err
		}

		req := client.ItemRequest(current)
		applyItemFlags(cmd, &req)

		item, err := c.UpdateItem(cmd.Context(), id, req)
		if err != nil {
			return err
		}
		fmt.Println("✓ Updated")
		printItem(item)
		return nil
	},
}

var itemsWatchCmd = &cobra.Command{
	Use:   "watch ID",
	Short: "Toggle the watched flag (administrator)",
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
		item, err := c.ToggleWatched(cmd.Context(), id)
		if err != nil {
			return err
		}
		if item.WatchOrder != nil {
			fmt.Printf("✓ %s marked watched (#%d)\n", item.Title, *item.WatchOrder)
		} else {
			fmt.Printf("✓ %s marked unwatched\n", item.Title)
		}
		return nil
	},
}

func addItemFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "title")
	cmd.Flags().String("format", "", "Blu-ray, DVD, Ultra HD, UV or Digital")
	cmd.Flags().String("is-3d", "", "Y or N")
	cmd.Flags().String("digital-type", "", "None, DC, UV or DC+UV")
	cmd.Flags().String("case-type", "", "Plain, Box, Digibook, Slipcover or Steelbook")
	cmd.Flags().String("status", "", "Owned, Wanted, Selling or Waiting")
	cmd.Flags().String("watched", "", "Y or N")
	cmd.Flags().String("cover", "", "cover image URL")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.Flags().String("available", "", "release date, YYYY-MM-DD")
}

// applyItemFlags overwrites only the fields whose flags were given.
func applyItemFlags(cmd *cobra.Command, req *dto.CatalogItemRequest) {
	set := func(name string, apply func(v string)) {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetString(name)
			apply(v)
		}
	}
	set("title", func(v string) { req.Title = v })
	set("format", func(v string) { req.Format = models.Format(v) })
	set("is-3d", func(v string) { req.Is3D = models.YesNo(v) })
	set("digital-type", func(v string) { req.DigitalType = models.DigitalType(v) })
	set("case-type", func(v string) { req.CaseType = models.CaseType(v) })
	set("status", func(v string) { req.Status = models.Status(v) })
	set("watched", func(v string) { req.Watched = models.YesNo(v) })
	set("cover", func(v string) { req.CoverImageURL = v })
	set("notes", func(v string) { req.Notes = &v })
	set("available", func(v string) {
		if v == "" {
			req.AvailableDate = nil
			return
		}
		req.AvailableDate = &v
	})
}

func printItem(it *dto.CatalogItemResponse) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%d\n", it.ID)
	fmt.Fprintf(w, "Title\t%s\n", it.Title)
	fmt.Fprintf(w, "Format\t%s (3D: %s)\n", it.Format, it.Is3D)
	fmt.Fprintf(w, "Digital\t%s\n", it.DigitalType)
	fmt.Fprintf(w, "Case\t%s\n", it.CaseType)
	fmt.Fprintf(w, "Status\t%s\n", it.Status)
	fmt.Fprintf(w, "Cover\t%s\n", deref(it.CoverImageURL))
	fmt.Fprintf(w, "Available\t%s\n", deref(it.AvailableDate))
	fmt.Fprintf(w, "Notes\t%s\n", deref(it.Notes))
	if it.WatchOrder != nil {
		fmt.Fprintf(w, "Watched\t%s (#%d)\n", it.Watched, *it.WatchOrder)
	} else {
		fmt.Fprintf(w, "Watched\t%s\n", it.Watched)
	}
	for _, t := range it.Titles {
		fmt.Fprintf(w, "  title %d\t%s\n", t.ID, deref(t.Title))
	}
	_ = w.Flush()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func init() {
	itemsCmd.AddCommand(itemsListCmd, itemsGetCmd, itemsAddCmd, itemsEditCmd, itemsWatchCmd)

	itemsListCmd.Flags().String("title", "", "title contains (case-insensitive)")
	itemsListCmd.Flags().String("format", "", "exact format, or all")
	itemsListCmd.Flags().String("case_type", "", "exact case type, or all")
	itemsListCmd.Flags().String("digital_type", "", "exact digital type, or all")
	itemsListCmd.Flags().String("is_3d", "", "Y, N or all")
	itemsListCmd.Flags().String("status", "", "exact status, or all")
	itemsListCmd.Flags().String("sort", "", "id, title or watch_order")
	itemsListCmd.Flags().String("order", "", "asc or desc")
	itemsListCmd.Flags().String("page", "", "page number")

	addItemFlags(itemsAddCmd)
	addItemFlags(itemsEditCmd)
	itemsAddCmd.MarkFlagRequired("title")
	itemsAddCmd.MarkFlagRequired("cover")
}
