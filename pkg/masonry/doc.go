// Package masonry computes justified row layouts for photo grids.
//
// # Overview
//
// Given a sequence of images with known aspect ratios and the width of the
// container they will be drawn into, [Compute] partitions the images into
// rows and assigns every image a display width and height. Each row is
// scaled so that its images plus the gaps between them span the container
// exactly, and every image keeps its original aspect ratio.
//
// # Row Packing
//
// Rows are packed greedily. Each image is first sized at the target row
// height ([TargetRowHeight]: a quarter of the container width, never less
// than 300px). Images are appended to the current row while the row still
// fits the container; the first image that does not fit closes the row and
// opens the next one. A closed row is then normalized: all widths in the row
// are multiplied by a common factor so the row fills the container.
//
// An image that cannot fit even alone at the target height (a very wide
// panorama on a narrow container) is placed in a row of its own and capped
// at min(containerWidth*0.5, naturalWidth, 500). Such rows are marked
// [Row.Forced] and are not normalized.
//
// # Degraded Input
//
// Images whose dimensions could not be measured are built with [NewImage],
// which substitutes a 300x200 (3:2) fallback instead of failing. A container
// width of zero or less means the container has not been measured yet:
// [Compute] returns an empty layout whose [Layout.Ready] reports false.
//
// # Usage
//
//	images := []masonry.Image{
//	    masonry.NewImage("a.jpg", 1200, 800),
//	    masonry.NewImage("b.jpg", 800, 1200),
//	}
//	l := masonry.Compute(images, 1000)
//	for _, row := range l.Rows {
//	    for _, t := range row.Tiles {
//	        fmt.Println(t.Image.Src, t.Width, t.Height)
//	    }
//	}
//
// [Compute] is a pure function: it performs no I/O, keeps no state, and
// returns identical layouts for identical inputs.
package masonry
