package fastview

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	. "github.com/smartystreets/goconvey/convey"
)

// textView sets the text of a single element to each view-model it receives.
type textView struct {
	id      string
	updates <-chan []EleUpdate
}

func (tv *textView) Updates() <-chan []EleUpdate {
	return tv.updates
}

func (tv *textView) Parse(t *template.Template) (string, error) {
	_, err := t.Parse(`{{ define "` + tv.id + `" }}<span id="` + tv.id + `">{{ . }}</span>{{ end }}`)
	return tv.id, err
}

func newTextView(id string) ViewBuilderFunc[string] {
	return func(done <-chan struct{}, vms <-chan string) ViewComponent {
		tv := &textView{id: id}
		tv.updates = channerics.Convert(done, vms, func(text string) []EleUpdate {
			return []EleUpdate{SetText(id, text)}
		})
		return tv
	}
}

func TestViewBuilder(t *testing.T) {
	Convey("Happy path builder", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		input := make(chan int)
		views, err := NewViewBuilder(strconv.Itoa).
			With(newTextView("first"), newTextView("second")).
			Build(ctx, input)
		So(err, ShouldBeNil)
		So(views, ShouldHaveLength, 2)

		Convey("Every view receives every converted model", func() {
			go func() { input <- 42 }()

			merged := channerics.Merge(ctx.Done(), views[0].Updates(), views[1].Updates())
			seen := map[string]string{}
			for i := 0; i < 2; i++ {
				select {
				case updates := <-merged:
					So(updates, ShouldHaveLength, 1)
					seen[updates[0].EleId] = updates[0].Ops[0].Value
				case <-time.After(time.Second):
					t.Fatal("timed out waiting for view updates")
				}
			}
			So(seen, ShouldResemble, map[string]string{"first": "42", "second": "42"})
		})

		Convey("Views parse into a parent template", func() {
			parent := template.New("page")
			name, err := views[0].Parse(parent)
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "first")
			So(parent.Lookup("first"), ShouldNotBeNil)
		})
	})

	Convey("Builder errors", t, func() {
		ctx := context.Background()

		Convey("Build without views fails", func() {
			_, err := NewViewBuilder(strconv.Itoa).Build(ctx, make(chan int))
			So(err, ShouldEqual, ErrNoViews)
		})

		Convey("Build without a model fails", func() {
			_, err := NewViewBuilder(strconv.Itoa).
				With(newTextView("orphan")).
				Build(ctx, nil)
			So(err, ShouldEqual, ErrNoModel)
		})

		Convey("Closing the model stream closes the views", func() {
			input := make(chan int)
			views, err := NewViewBuilder(strconv.Itoa).
				With(newTextView("only")).
				Build(ctx, input)
			So(err, ShouldBeNil)
			close(input)

			select {
			case _, ok := <-views[0].Updates():
				So(ok, ShouldBeFalse)
			case <-time.After(time.Second):
				t.Fatal("view did not close")
			}
		})
	})
}

func TestClient(t *testing.T) {
	Convey("When a browser connects to the publisher", t, func() {
		updates := make(chan []EleUpdate)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cli, err := NewClient(updates, w, r)
			if err != nil {
				return
			}
			_ = cli.Sync()
		}))
		defer srv.Close()

		conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
		So(err, ShouldBeNil)
		defer conn.Close()

		Convey("The latest update is always delivered", func() {
			for _, text := range []string{"a", "b", "c"} {
				updates <- []EleUpdate{SetText("status", text)}
			}

			received := 0
			last := ""
			_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			for last != "c" {
				var msg []EleUpdate
				if err := conn.ReadJSON(&msg); err != nil {
					t.Fatalf("read failed after %d messages: %v", received, err)
				}
				received++
				last = msg[0].Ops[0].Value
			}
			So(received, ShouldBeLessThanOrEqualTo, 3)
			So(last, ShouldEqual, "c")
		})
	})
}
