package cell_views

import (
	"html/template"

	"gridsearch/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// StatsView shows the search counters and the outcome message as text.
type StatsView struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewStatsView(
	done <-chan struct{},
	boards <-chan Board,
) (sv *StatsView) {
	sv = &StatsView{id: "stats"}
	sv.updates = channerics.Convert(done, boards, sv.onUpdate)
	return
}

func (sv *StatsView) Updates() <-chan []fastview.EleUpdate {
	return sv.updates
}

func (sv *StatsView) onUpdate(board Board) []fastview.EleUpdate {
	return []fastview.EleUpdate{
		fastview.SetText(sv.id+"-step", board.Stats.Step),
		fastview.SetText(sv.id+"-open", board.Stats.Open),
		fastview.SetText(sv.id+"-closed", board.Stats.Closed),
		fastview.SetText(sv.id+"-g", board.Stats.G),
		fastview.SetText(sv.id+"-message", board.Stats.Message),
	}
}

func (sv *StatsView) Parse(
	t *template.Template,
) (name string, err error) {
	name = sv.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<div id="` + sv.id + `" style="padding:20px; font-family: monospace;">
			<div>step: <span id="` + sv.id + `-step">{{ .Stats.Step }}</span></div>
			<div>open: <span id="` + sv.id + `-open">{{ .Stats.Open }}</span></div>
			<div>closed: <span id="` + sv.id + `-closed">{{ .Stats.Closed }}</span></div>
			<div>g: <span id="` + sv.id + `-g">{{ .Stats.G }}</span></div>
			<h3 id="` + sv.id + `-message">{{ .Stats.Message }}</h3>
		</div>
		{{ end }}`)
	return
}
