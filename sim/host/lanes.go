package host

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/inference-sim/jammed-packing/sim"
)

// Lane glyphs.
const (
	glyphEmpty  = '·'
	glyphPlaced = '█'
	glyphForced = '▲'
)

var laneColors = []tcell.Color{
	tcell.ColorYellow, tcell.ColorBlue, tcell.ColorRed, tcell.ColorGreen, tcell.ColorPurple, tcell.ColorWhite,
}

// LaneView keeps the most recent Width() ticks as a scrolling piano roll, one row
// per species, and draws it to a tcell screen.
type LaneView struct {
	lanes  int
	cols   []sim.Outcome // ring of the last len(cols) ticks
	next   int
	filled int

	ticks      int64
	placements int
}

// NewLaneView creates a view of the given width in ticks for the given number of species.
func NewLaneView(lanes, width int) *LaneView {
	if lanes < 1 {
		lanes = 1
	}
	if width < 1 {
		width = 1
	}
	return &LaneView{lanes: lanes, cols: make([]sim.Outcome, width)}
}

// Width returns the number of ticks shown.
func (lv *LaneView) Width() int { return len(lv.cols) }

// SetLanes resizes the species rows, e.g. after species are added or removed.
func (lv *LaneView) SetLanes(n int) {
	if n > 0 {
		lv.lanes = n
	}
}

// Push records one engine step, scrolling the oldest tick out when full.
func (lv *LaneView) Push(o sim.Outcome) {
	lv.cols[lv.next] = o
	lv.next = (lv.next + 1) % len(lv.cols)
	if lv.filled < len(lv.cols) {
		lv.filled++
	}
	lv.ticks = o.Tick
	if o.Placed {
		lv.placements++
	}
}

// Cell returns the glyph at column x (0 = oldest shown) of a species lane.
func (lv *LaneView) Cell(x, lane int) rune {
	if x < 0 || x >= lv.filled {
		return ' '
	}
	start := (lv.next - lv.filled + len(lv.cols)) % len(lv.cols)
	o := lv.cols[(start+x)%len(lv.cols)]
	switch {
	case !o.Placed || o.SpeciesID != lane:
		return glyphEmpty
	case o.Forced:
		return glyphForced
	default:
		return glyphPlaced
	}
}

// Draw renders the header and every lane to screen and shows it.
func (lv *LaneView) Draw(screen tcell.Screen) {
	screen.Clear()
	header := fmt.Sprintf("tick %d  placements %d  (q to quit)", lv.ticks, lv.placements)
	drawText(screen, 0, 0, header, tcell.StyleDefault.Bold(true))

	w, h := screen.Size()
	for lane := 0; lane < lv.lanes && lane+1 < h; lane++ {
		label := fmt.Sprintf("%2d ", lane)
		drawText(screen, 0, lane+1, label, tcell.StyleDefault)
		style := tcell.StyleDefault.Foreground(laneColors[lane%len(laneColors)])
		for x := 0; x < lv.filled && x+len(label) < w; x++ {
			r := lv.Cell(x, lane)
			st := style
			if r == glyphEmpty {
				st = tcell.StyleDefault.Foreground(tcell.ColorGray)
			}
			screen.SetContent(x+len(label), lane+1, r, nil, st)
		}
	}
	screen.Show()
}

func drawText(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}

// Watch steps the engine ticksPerFrame times every interval and redraws, until ctx
// is done or the user presses q, Esc, or Ctrl-C. The screen must already be
// initialized; Watch does not finalize it.
func (lv *LaneView) Watch(ctx context.Context, screen tcell.Screen, step func() sim.Outcome, ticksPerFrame int, interval time.Duration) error {
	if ticksPerFrame < 1 {
		ticksPerFrame = 1
	}
	if interval <= 0 {
		return fmt.Errorf("frame interval must be positive, got %v", interval)
	}

	quit := make(chan struct{})
	go func() {
		defer close(quit)
		for {
			switch ev := screen.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					return
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-quit:
			return nil
		case <-ticker.C:
			for i := 0; i < ticksPerFrame; i++ {
				lv.Push(step())
			}
			lv.Draw(screen)
		}
	}
}
