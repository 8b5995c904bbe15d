// Package layout turns the current artifact set into positioned canvas
// blocks and connectors. Compute is pure: identical input yields an
// identical block list, so the reconciler can detect "no change".
package layout

import (
	"unicode/utf8"

	"github.com/alexjunanjing-2/openOii-doubao/internal/run"
)

// Key is a stable logical identifier for a block, independent of artifact
// ids, so visual identity survives recomputation.
type Key string

const (
	KeyScript     Key = "script-section"
	KeyCharacters Key = "character-section"
	KeyStoryboard Key = "storyboard-section"
	KeyVideo      Key = "video-section"
)

// Kind is the block's content category.
type Kind string

const (
	KindNarrative  Kind = "narrative"
	KindCharacters Kind = "characters"
	KindStoryboard Kind = "storyboard"
	KindVideo      Kind = "video"
)

// Layout geometry. Heights are deliberately generous: an oversized block
// wastes canvas, an undersized one overlaps its neighbor.
const (
	originX = 0.0
	originY = 0.0

	columnWidth = 920.0
	blockGap    = 80.0

	headerHeight = 56.0
	blockPadding = 24.0

	textCharsPerLine = 42
	textLineHeight   = 28.0

	characterCardsPerRow = 3
	characterCardHeight  = 248.0

	shotCellsPerRow = 3
	shotCellHeight  = 232.0

	gridRowGap = 16.0

	videoWidth  = 640.0
	videoHeight = 416.0
)

// Payload is the content handed to the canvas surface for rendering.
type Payload struct {
	Title      string
	Text       string
	Characters []run.Character
	Shots      []run.Shot
	VideoURL   string
}

// Block is one absolutely positioned rectangle on the canvas.
type Block struct {
	Key     Key
	Kind    Kind
	X, Y    float64
	W, H    float64
	Payload Payload
}

// Connector is a directed edge between two present blocks.
type Connector struct {
	From Key
	To   Key
}

// Input is everything the layout depends on. No other state may leak in.
type Input struct {
	Title      string
	Summary    string
	Characters []run.Character
	Shots      []run.Shot
	VideoURL   string
}

// Result is the ordered block list plus connectors between consecutive
// present blocks.
type Result struct {
	Blocks     []Block
	Connectors []Connector
}

// Compute lays the present blocks out in a single column in fixed order
// narrative, characters, storyboard, video. Absent kinds are skipped and
// their neighbors connect directly.
func Compute(in Input) Result {
	var res Result
	cursor := originY

	place := func(b Block) {
		b.Y = cursor
		cursor += b.H + blockGap
		if n := len(res.Blocks); n > 0 {
			res.Connectors = append(res.Connectors, Connector{
				From: res.Blocks[n-1].Key,
				To:   b.Key,
			})
		}
		res.Blocks = append(res.Blocks, b)
	}

	if in.Summary != "" || len(in.Characters) > 0 || len(in.Shots) > 0 {
		place(Block{
			Key:  KeyScript,
			Kind: KindNarrative,
			X:    originX,
			W:    columnWidth,
			H:    narrativeHeight(in.Summary),
			Payload: Payload{
				Title: in.Title,
				Text:  in.Summary,
			},
		})
	}

	if len(in.Characters) > 0 {
		place(Block{
			Key:  KeyCharacters,
			Kind: KindCharacters,
			X:    originX,
			W:    columnWidth,
			H:    gridHeight(len(in.Characters), characterCardsPerRow, characterCardHeight),
			Payload: Payload{
				Characters: in.Characters,
			},
		})
	}

	if framed := framedShots(in.Shots); len(framed) > 0 {
		place(Block{
			Key:  KeyStoryboard,
			Kind: KindStoryboard,
			X:    originX,
			W:    columnWidth,
			H:    gridHeight(len(framed), shotCellsPerRow, shotCellHeight),
			Payload: Payload{
				Shots: framed,
			},
		})
	}

	if in.VideoURL != "" {
		// The video block's fixed width differs from the column, so it is
		// centered rather than left-aligned.
		place(Block{
			Key:  KeyVideo,
			Kind: KindVideo,
			X:    originX + (columnWidth-videoWidth)/2,
			W:    videoWidth,
			H:    videoHeight,
			Payload: Payload{
				VideoURL: in.VideoURL,
			},
		})
	}

	return res
}

// narrativeHeight estimates the wrapped height of the summary text.
// Monotonic in text length.
func narrativeHeight(text string) float64 {
	lines := (utf8.RuneCountInString(text) + textCharsPerLine - 1) / textCharsPerLine
	if lines < 1 {
		lines = 1
	}
	return headerHeight + float64(lines)*textLineHeight + 2*blockPadding
}

// gridHeight estimates the height of n items at a fixed items-per-row.
// Monotonic in n.
func gridHeight(n, perRow int, rowHeight float64) float64 {
	rows := (n + perRow - 1) / perRow
	if rows < 1 {
		rows = 1
	}
	return headerHeight + float64(rows)*rowHeight + float64(rows-1)*gridRowGap + 2*blockPadding
}

// framedShots filters to shots that already have a generated frame image,
// preserving input order.
func framedShots(shots []run.Shot) []run.Shot {
	var out []run.Shot
	for _, sh := range shots {
		if sh.ImageURL != "" {
			out = append(out, sh)
		}
	}
	return out
}
