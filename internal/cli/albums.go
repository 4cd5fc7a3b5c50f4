package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reactiveshots/portfolio/pkg/catalog"
	"github.com/reactiveshots/portfolio/pkg/content"
)

// albumsCommand creates the albums command.
func (c *CLI) albumsCommand() *cobra.Command {
	var (
		asJSON  bool
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "albums [category]",
		Short: "List categories or the photos in one album",
		Long: `List categories or the photos in one album.

Without arguments every category is fetched and summarized. With a category
the album's photos are listed.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: categoryArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.newServices(ctx, noCache)
			if err != nil {
				return err
			}
			defer svc.Close()

			if len(args) == 1 {
				return c.runAlbum(ctx, cmd.OutOrStdout(), svc.content, args[0], refresh, asJSON)
			}
			return c.runAlbums(ctx, cmd.OutOrStdout(), svc.content, refresh, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refetch albums even if cached")

	return cmd
}

func (c *CLI) runAlbum(ctx context.Context, w io.Writer, client *content.Client, slug string, refresh, asJSON bool) error {
	album, err := client.Album(ctx, slug, refresh)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", slug, err)
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(album)
	}

	t := newTable([]string{"#", "Compressed", "Blur"}, 0)
	for i, p := range album.Photos {
		blur := ""
		if p.BlurPlaceholder != "" {
			blur = iconSuccess
		}
		t.Row(strconv.Itoa(i+1), p.CompressedImageURL, blur)
	}
	printKeyValue("Album", album.Name)
	printKeyValue("Photos", strconv.Itoa(album.ImageCount))
	fmt.Fprintln(w, t.Render())
	return nil
}

// albumSummary is one line of the category overview.
type albumSummary struct {
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Photos int    `json:"photos"`
	Error  string `json:"error,omitempty"`
}

// runAlbums fetches every category concurrently. A failing category is
// reported in its row instead of failing the command.
func (c *CLI) runAlbums(ctx context.Context, w io.Writer, client *content.Client, refresh, asJSON bool) error {
	cats := catalog.Categories()
	summaries := make([]albumSummary, len(cats))

	spinner := newSpinnerWithContext(ctx, "Fetching albums...")
	spinner.Start()

	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range cats {
		g.Go(func() error {
			s := albumSummary{Slug: cat.Slug, Name: cat.Title()}
			album, err := client.Album(gctx, cat.Slug, refresh)
			if err != nil {
				s.Error = err.Error()
			} else {
				s.Name, s.Photos = album.Name, album.ImageCount
			}
			summaries[i] = s
			return nil
		})
	}
	_ = g.Wait()
	spinner.Stop()

	if err := ctx.Err(); err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	t := newTable([]string{"Category", "Album", "Photos", "Status"}, 2)
	for _, s := range summaries {
		status := styleIconSuccess.Render(iconSuccess)
		if s.Error != "" {
			status = styleIconError.Render(iconError) + " " + s.Error
		}
		t.Row(s.Slug, s.Name, strconv.Itoa(s.Photos), status)
	}
	fmt.Fprintln(w, t.Render())
	return nil
}
