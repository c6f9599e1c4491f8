package fastview

import (
	"context"
	"errors"

	channerics "github.com/niceyeti/channerics/channels"
)

// ViewBuilderFunc builds a view over a stream of view-models. The view must stop sending
// once done is closed.
type ViewBuilderFunc[VM any] func(done <-chan struct{}, viewModels <-chan VM) ViewComponent

// ViewBuilder converts each model to a view-model once and hands every view-model to
// each registered view, so views sharing a model never disagree about its state.
type ViewBuilder[M any, VM any] struct {
	convert func(M) VM
	views   []ViewBuilderFunc[VM]
}

// NewViewBuilder returns a builder whose views consume convert's output.
func NewViewBuilder[M any, VM any](convert func(M) VM) *ViewBuilder[M, VM] {
	return &ViewBuilder[M, VM]{convert: convert}
}

// With registers views. Build returns them in registration order.
func (vb *ViewBuilder[M, VM]) With(views ...ViewBuilderFunc[VM]) *ViewBuilder[M, VM] {
	vb.views = append(vb.views, views...)
	return vb
}

var (
	// ErrNoViews is returned by Build when no view was registered.
	ErrNoViews = errors.New("no views to build: With must be called")
	// ErrNoModel is returned by Build without a model stream or a conversion.
	ErrNoModel = errors.New("no model to build views from")
)

// Build wires models through the conversion to every view. The views' channels close
// when models closes or ctx is done. A slow view holds back the others.
func (vb *ViewBuilder[M, VM]) Build(
	ctx context.Context,
	models <-chan M,
) ([]ViewComponent, error) {
	if len(vb.views) == 0 {
		return nil, ErrNoViews
	}
	if models == nil || vb.convert == nil {
		return nil, ErrNoModel
	}

	done := ctx.Done()
	shared := channerics.Broadcast(done, channerics.Convert(done, models, vb.convert), len(vb.views))
	components := make([]ViewComponent, len(vb.views))
	for i, build := range vb.views {
		components[i] = build(done, shared[i])
	}
	return components, nil
}
