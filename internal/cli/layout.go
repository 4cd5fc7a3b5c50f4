package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reactiveshots/portfolio/pkg/catalog"
	"github.com/reactiveshots/portfolio/pkg/errors"
	"github.com/reactiveshots/portfolio/pkg/masonry"
)

// defaultLayoutWidth is the container width used when --width is not given.
const defaultLayoutWidth = 1200

type layoutOptions struct {
	file    string
	width   float64
	output  string
	asJSON  bool
	noCache bool
	refresh bool
}

// layoutCommand creates the layout command for computing masonry layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := layoutOptions{width: defaultLayoutWidth}

	cmd := &cobra.Command{
		Use:   "layout [category]",
		Short: "Compute the masonry layout of a gallery",
		Long: `Compute the masonry layout of a gallery.

With a category argument the album is fetched from the content API and every
photo is measured before packing. With --file the images are read from a JSON
array of {"src", "width", "height"} objects and nothing is fetched.

Results are cached locally for faster subsequent runs.`,
		Example: `  reactiveshots layout events --width 1024
  reactiveshots layout --file photos.json --json -o layout.json`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: categoryArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (opts.file == "") {
				return fmt.Errorf("give either a category or --file")
			}
			if err := errors.ValidateWidth(opts.width); err != nil {
				return err
			}
			slug := ""
			if len(args) == 1 {
				slug = args[0]
			}
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), slug, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read images from a JSON file instead of the content API")
	cmd.Flags().Float64VarP(&opts.width, "width", "w", opts.width, "container width in pixels")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the layout JSON to a file")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the layout as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "refetch the album even if cached")

	return cmd
}

// runLayout computes the layout and prints or writes it.
func (c *CLI) runLayout(ctx context.Context, w io.Writer, slug string, opts layoutOptions) error {
	svc, err := c.newServices(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer svc.Close()

	var (
		result    any
		layout    masonry.Layout
		images    int
		fallbacks int
		cached    bool
	)

	if slug != "" {
		if _, ok := catalog.Lookup(slug); !ok {
			return errors.New(errors.ErrCodeInvalidCategory, "unknown category %q (want one of %s)", slug, strings.Join(catalog.Slugs(), ", "))
		}
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %s...", slug))
		spinner.Start()
		res, err := svc.runner.Layout(ctx, slug, opts.width, opts.refresh)
		if err != nil {
			spinner.StopWithError("Layout failed")
			return fmt.Errorf("compute layout: %w", err)
		}
		spinner.Stop()
		result, layout = res, res.Layout
		images, fallbacks, cached = res.Stats.Images, res.Stats.Fallbacks, res.CacheInfo.LayoutHit
	} else {
		imgs, err := readImages(opts.file)
		if err != nil {
			return err
		}
		prog := newProgress(c.Logger)
		layout, cached, err = svc.runner.ComputeWithCacheInfo(ctx, imgs, opts.width)
		if err != nil {
			return fmt.Errorf("compute layout: %w", err)
		}
		prog.done(fmt.Sprintf("Packed %d images", len(imgs)))
		result, images = layout, len(imgs)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if opts.output != "" {
		if err := writeJSONFile(opts.output, result); err != nil {
			return fmt.Errorf("write output %s: %w", opts.output, err)
		}
		printSuccess("Layout complete")
		printFile(opts.output)
		printStats(images, fallbacks, len(layout.Rows), cached)
		return nil
	}

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintln(w, layoutTable(layout))
	printStats(images, fallbacks, len(layout.Rows), cached)
	if slug != "" {
		printNewline()
		printNextStep("Preview", appName+" preview "+slug)
	}
	return nil
}

// readImages loads a JSON array of images and recomputes their aspect ratios.
func readImages(path string) ([]masonry.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read images %s: %w", path, err)
	}
	var raw []masonry.Image
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse images %s", path)
	}
	images := make([]masonry.Image, len(raw))
	for i, img := range raw {
		images[i] = masonry.NewImage(img.Src, img.Width, img.Height)
	}
	return images, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// layoutTable renders one line per row: offset, height and tile widths.
func layoutTable(l masonry.Layout) string {
	t := newTable([]string{"Row", "Y", "Height", "Tiles", "Widths"}, 0, 1, 2, 3)
	for i, row := range l.Rows {
		widths := make([]string, len(row.Tiles))
		for j, tile := range row.Tiles {
			widths[j] = strconv.FormatFloat(tile.Width, 'f', 1, 64)
		}
		height := strconv.FormatFloat(row.Height, 'f', 1, 64)
		if row.Forced {
			height += "*"
		}
		t.Row(
			strconv.Itoa(i+1),
			strconv.FormatFloat(row.Y, 'f', 1, 64),
			height,
			strconv.Itoa(len(row.Tiles)),
			strings.Join(widths, " "),
		)
	}
	return t.Render()
}
