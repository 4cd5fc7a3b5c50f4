// Package gallery runs the album → measure → layout pipeline.
//
// [Runner] fetches a category's album from the content API, measures every
// photo's natural size, and packs the photos into masonry rows for a
// container width. Album metadata, image sizes and computed layouts are all
// cached; the CLI and the HTTP server share one Runner implementation.
//
//	runner := gallery.NewRunner(contentClient, measure.NewHTTPMeasurer(), c, nil, logger)
//	result, err := runner.Layout(ctx, "events", 1200, false)
//
// [Rotator] keeps a small random selection of featured photos per category
// and advances the displayed photo on a fixed interval. Its lifetime is
// bounded by [Rotator.Start] and [Rotator.Stop].
package gallery
