package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/reactiveshots/portfolio/pkg/masonry"
)

// Terminal cells are roughly twice as tall as they are wide.
const cellAspect = 2.0

var (
	previewTileColors = []lipgloss.Color{"30", "36", "66", "72", "108", "144"}
	previewLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	previewDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// previewModel draws a masonry layout with one terminal column per
// pxPerCol pixels. Resizing the terminal recomputes the layout, the same
// way the site does when its container changes width.
type previewModel struct {
	title    string
	images   []masonry.Image
	pxPerCol float64

	cols, rows int // terminal size
	offset     int // first visible line
	layout     masonry.Layout
	lines      []string
}

func newPreviewModel(title string, images []masonry.Image) previewModel {
	return previewModel{title: title, images: images, pxPerCol: 10}
}

func (m previewModel) Init() tea.Cmd { return nil }

// containerWidth is the pixel width the terminal represents.
func (m previewModel) containerWidth() float64 {
	return float64(m.cols) * m.pxPerCol
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.offset--
		case "down", "j":
			m.offset++
		case "pgup":
			m.offset -= m.viewHeight()
		case "pgdown", " ":
			m.offset += m.viewHeight()
		case "+", "=":
			if m.pxPerCol > 2 {
				m.pxPerCol -= 2
				m = m.relayout()
			}
		case "-":
			if m.pxPerCol < 40 {
				m.pxPerCol += 2
				m = m.relayout()
			}
		}
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m = m.relayout()
	}
	m.offset = max(0, min(m.offset, len(m.lines)-m.viewHeight()))
	return m, nil
}

func (m previewModel) relayout() previewModel {
	if m.cols <= 0 {
		m.layout, m.lines = masonry.Layout{}, nil
		return m
	}
	m.layout = masonry.Compute(m.images, m.containerWidth())
	m.lines = drawLayout(m.layout, m.pxPerCol)
	return m
}

// viewHeight is the number of layout lines that fit under the header.
func (m previewModel) viewHeight() int {
	return max(1, m.rows-4)
}

func (m previewModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n")
	if !m.layout.Ready() {
		b.WriteString(previewDimStyle.Render("Measuring terminal..."))
		return b.String()
	}
	b.WriteString(previewDimStyle.Render(fmt.Sprintf("%.0fpx wide · %d rows · %d photos · ↑/↓ scroll  +/- zoom  q quit",
		m.layout.ContainerWidth, len(m.layout.Rows), len(m.images))))
	b.WriteString("\n\n")

	end := min(len(m.lines), m.offset+m.viewHeight())
	b.WriteString(strings.Join(m.lines[m.offset:end], "\n"))
	return b.String()
}

// drawLayout renders each row as solid blocks, one per tile, labelled with
// the tile's 1-based position in the album.
func drawLayout(l masonry.Layout, pxPerCol float64) []string {
	pxPerLine := pxPerCol * cellAspect
	gapLines := int(math.Round(l.Gap / pxPerLine))

	var lines []string
	for ri, row := range l.Rows {
		if ri > 0 {
			for range gapLines {
				lines = append(lines, "")
			}
		}
		h := max(1, int(math.Round(row.Height/pxPerLine)))
		for li := range h {
			lines = append(lines, drawRowLine(row, pxPerCol, li == h/2))
		}
	}
	return lines
}

func drawRowLine(row masonry.Row, pxPerCol float64, label bool) string {
	var b strings.Builder
	col := 0
	for _, t := range row.Tiles {
		start := max(col, int(math.Round(t.X/pxPerCol)))
		w := max(1, int(math.Round((t.X+t.Width)/pxPerCol))-start)
		if start > col {
			b.WriteString(strings.Repeat(" ", start-col))
			col = start
		}

		style := lipgloss.NewStyle().Background(previewTileColors[t.Index%len(previewTileColors)])
		text := fmt.Sprint(t.Index + 1)
		if label && len(text) <= w {
			pad := (w - len(text)) / 2
			b.WriteString(style.Render(strings.Repeat(" ", pad)))
			b.WriteString(previewLabelStyle.Inherit(style).Render(text))
			b.WriteString(style.Render(strings.Repeat(" ", w-pad-len(text))))
		} else {
			b.WriteString(style.Render(strings.Repeat(" ", w)))
		}
		col += w
	}
	return b.String()
}

// previewCommand creates the interactive layout preview.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "preview <category>",
		Short: "Preview a gallery layout in the terminal",
		Long: `Preview a gallery layout in the terminal.

The album is fetched and measured once, then laid out for the terminal width.
Resize the terminal to see the rows reflow.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: categoryArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.newServices(ctx, noCache)
			if err != nil {
				return err
			}
			defer svc.Close()

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Measuring %s...", args[0]))
			spinner.Start()
			images, album, err := svc.runner.Images(ctx, args[0], refresh)
			if err != nil {
				spinner.StopWithError("Could not load album")
				return err
			}
			spinner.Stop()

			p := tea.NewProgram(newPreviewModel(album.Name, images), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refetch the album even if cached")

	return cmd
}
