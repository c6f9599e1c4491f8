// Package fastview builds server-side views that keep a browser page in sync: a stream
// of models is converted to a view-model, fanned out to views, and each view emits
// element updates that a websocket client pushes to the page.
package fastview

import "html/template"

// textContent is the reserved op key that sets an element's text instead of an attribute.
const textContent = "textContent"

// EleUpdate names a page element by id and the changes to make to it.
type EleUpdate struct {
	EleId string
	Ops   []Op
}

// Op sets attribute Key of an element to Value, or its text when Key is "textContent".
type Op struct {
	Key   string
	Value string
}

// SetText replaces the text of element id.
func SetText(id, text string) EleUpdate {
	return EleUpdate{EleId: id, Ops: []Op{{Key: textContent, Value: text}}}
}

// SetAttr sets attribute key of element id.
func SetAttr(id, key, value string) EleUpdate {
	return EleUpdate{EleId: id, Ops: []Op{{Key: key, Value: value}}}
}

// ViewComponent is a server-side view. Parse defines its initial markup in a page
// template and returns the defined template's name; Updates streams the changes to it.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	Parse(*template.Template) (string, error)
}
