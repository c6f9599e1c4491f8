package cell_views

import (
	"fmt"
	"html/template"

	"gridsearch/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// cellDim is the cell height/width in pixels.
const cellDim = 24

// GridView draws the grid as an svg of rects whose fill tracks the search.
type GridView struct {
	id      string
	updates <-chan []fastview.EleUpdate
	// last fills sent, so only changed cells are updated
	fills map[string]string
}

func NewGridView(
	done <-chan struct{},
	boards <-chan Board,
) (gv *GridView) {
	gv = &GridView{
		id:    template.HTMLEscapeString("grid"),
		fills: map[string]string{},
	}
	gv.updates = channerics.Convert(done, boards, gv.onUpdate)
	return
}

func (gv *GridView) Updates() <-chan []fastview.EleUpdate {
	return gv.updates
}

func rectId(cell Cell) string {
	return fmt.Sprintf("%d-%d-cell-rect", cell.X, cell.Y)
}

// Returns the ele-updates for the cells whose fill changed since the last board.
func (gv *GridView) onUpdate(board Board) (ops []fastview.EleUpdate) {
	for _, column := range board.Cells {
		for _, cell := range column {
			id := rectId(cell)
			if gv.fills[id] == cell.Fill {
				continue
			}
			gv.fills[id] = cell.Fill
			ops = append(ops, fastview.SetAttr(id, "fill", cell.Fill))
		}
	}
	return
}

// Parse defines the grid svg template. It expects a Board and the parent's func-map.
func (gv *GridView) Parse(
	t *template.Template,
) (name string, err error) {
	name = gv.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<div id="` + gv.id + `-container" style="padding:20px;">
			{{ $x_cells := len .Cells }}
			{{ $y_cells := len (index .Cells 0) }}
			{{ $cell_width := ` + fmt.Sprintf("%d", cellDim) + ` }}
			{{ $cell_height := $cell_width }}
			{{ $width := mult $cell_width $x_cells }}
			{{ $height := mult $cell_height $y_cells }}
			{{ $half_height := div $cell_height 2 }}
			{{ $half_width := div $cell_width 2 }}
			<svg id="` + gv.id + `" xmlns='http://www.w3.org/2000/svg'
				width="{{ add $width 1 }}px"
				height="{{ add $height 1 }}px"
				style="shape-rendering: crispEdges;">
				{{ range $column := .Cells }}
					{{ range $cell := $column }}
					<g>
						<rect id="{{$cell.X}}-{{$cell.Y}}-cell-rect"
							x="{{ mult $cell.X $cell_width }}"
							y="{{ mult $cell.Y $cell_height }}"
							width="{{ $cell_width }}"
							height="{{ $cell_height }}"
							fill="{{ $cell.Fill }}"
							stroke="lightgray"
							stroke-width="1"/>
						{{ if $cell.Label }}
						<text
							x="{{ add (mult $cell.X $cell_width) $half_width }}"
							y="{{ add (mult $cell.Y $cell_height) $half_height }}"
							font-size="10"
							dominant-baseline="central" text-anchor="middle"
							>{{ $cell.Label }}</text>
						{{ end }}
					</g>
					{{ end }}
				{{ end }}
			</svg>
		</div>
		{{ end }}`)
	return
}
