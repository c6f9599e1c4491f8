package root_view

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"gridsearch/models"
	"gridsearch/server/cell_views"
	"gridsearch/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// batchRate is how often accumulated ele-updates are flushed to the client.
const batchRate = time.Millisecond * 20

// RootView is the main page's index.html, which is the container for all the
// view components, the wiring for their channels, etc.
type RootView struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate
}

// NewRootView creates the main page and the views it contains, fed by search frames.
func NewRootView(
	ctx context.Context,
	frames <-chan models.Frame,
) (*RootView, error) {
	views, err := fastview.NewViewBuilder(cell_views.Convert).
		With(
			func(done <-chan struct{}, boards <-chan cell_views.Board) fastview.ViewComponent {
				return cell_views.NewGridView(done, boards)
			},
			func(done <-chan struct{}, boards <-chan cell_views.Board) fastview.ViewComponent {
				return cell_views.NewStatsView(done, boards)
			}).
		Build(ctx, frames)
	if err != nil {
		return nil, err
	}

	return &RootView{
		views:   views,
		updates: fanIn(ctx.Done(), views),
	}, nil
}

// Updates returns the main ele-update channel for all the views.
func (rv *RootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// pageFuncs is the arithmetic the view templates lay out cells with.
var pageFuncs = template.FuncMap{
	"add":  func(i, j int) int { return i + j },
	"mult": func(i, j int) int { return i * j },
	"div":  func(i, j int) int { return i / j },
}

const pageName = "mainpage"

// pageLayout receives the view template invocations at %s. The script applies each
// pushed ele-update to the element it names.
const pageLayout = `{{ define "` + pageName + `" }}<!DOCTYPE html>
<html>
<head>
	<title>gridsearch</title>
	<link rel="icon" href="data:,">
	<script>
		function apply(update) {
			const ele = document.getElementById(update.EleId);
			if (ele === null) {
				return;
			}
			for (const op of update.Ops) {
				if (op.Key === "textContent") {
					ele.textContent = op.Value;
				} else {
					ele.setAttribute(op.Key, op.Value);
				}
			}
		}

		const socket = new WebSocket("ws://" + location.host + "/ws");
		socket.onmessage = (event) => JSON.parse(event.data).forEach(apply);
		socket.onerror = (event) => console.log("websocket error", event);
		socket.onclose = () => {
			document.getElementById("connection").textContent = "live updates stopped";
		};
	</script>
</head>
<body style="display: flex; align-items: flex-start;">
%s
<div id="connection" style="padding:20px; color: gray; font-family: monospace;"></div>
</body>
</html>
{{ end }}`

// Parse defines every view's template and the page around them in parent, and returns
// the page's template name. The views rely on the arithmetic funcs installed here.
func (rv *RootView) Parse(parent *template.Template) (string, error) {
	page := parent.Funcs(pageFuncs)

	var body strings.Builder
	for _, vc := range rv.views {
		name, err := vc.Parse(page)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&body, "{{ template %q . }}\n", name)
	}

	if _, err := page.Parse(fmt.Sprintf(pageLayout, body.String())); err != nil {
		return "", err
	}
	return pageName, nil
}

// fanIn aggregates the views' ele-update channels into a single channel,
// and throttles its output.
func fanIn(
	done <-chan struct{},
	views []fastview.ViewComponent,
) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, view := range views {
		inputs[i] = view.Updates()
	}
	return batchify(
		done,
		channerics.Merge(done, inputs...),
		batchRate)
}

// batchify accumulates ele-updates and flushes them once per rate when anything changed.
// Every flush holds the latest value of every ele-id seen so far, so each batch fully
// describes the page and a consumer may safely drop all but the newest batch.
func batchify(
	done <-chan struct{},
	source <-chan []fastview.EleUpdate,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		data := map[string]fastview.EleUpdate{}
		dirty := false
		ticker := channerics.NewTicker(done, rate)
		for {
			select {
			case <-done:
				return
			case updates, ok := <-source:
				if !ok {
					if dirty {
						select {
						case output <- slicedVals(data):
						case <-done:
						}
					}
					return
				}
				// Intentionally overwrites pre-existing values for an ele-id.
				for _, update := range updates {
					data[update.EleId] = update
					dirty = true
				}
			case <-ticker:
				if !dirty {
					continue
				}
				select {
				case output <- slicedVals(data):
					dirty = false
				case <-done:
					return
				}
			}
		}
	}()

	return output
}

// returns the values of a map as a slice
func slicedVals[T1 comparable, T2 any](mp map[T1]T2) (sliced []T2) {
	for _, v := range mp {
		sliced = append(sliced, v)
	}
	return
}
