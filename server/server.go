package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"gridsearch/astar"
	"gridsearch/grid_world"
	"gridsearch/models"
	"gridsearch/server/cell_views"
	"gridsearch/server/fastview"
	"gridsearch/server/root_view"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

// Time allowed for in-flight requests when the server shuts down.
const shutdownGracePeriod = 5 * time.Second

// Params describes the search the server runs and shows.
type Params struct {
	Addr         string
	Start        grid_world.Point
	Goal         grid_world.Point
	ClosedPolicy astar.ClosedPolicy
	// StepDelay paces the search between progress events so it can be watched.
	StepDelay time.Duration
	// Deadline abandons the search once it passes; zero means no deadline. The page
	// keeps serving the cancelled result.
	Deadline time.Duration
}

// Server runs one search in the background and serves a live view of it: a single
// page, updated over a websocket as the search progresses. The search only advances
// while a client consumes the updates, so a viewer sees it from the beginning.
// The update stream is served to one websocket at a time; a page loaded later starts
// from the latest frame.
type Server struct {
	params   Params
	logger   *slog.Logger
	grid     *grid_world.CostGrid
	frames   chan models.Frame
	tracker  *models.Tracker
	rootView *root_view.RootView
	router   *mux.Router

	mu     sync.Mutex
	result *astar.Result
}

// NewServer initializes all of the views and returns a server. Start and goal must be
// in bounds of grid.
func NewServer(
	ctx context.Context,
	logger *slog.Logger,
	grid *grid_world.CostGrid,
	params Params,
) (*Server, error) {
	if !grid.InBounds(params.Start.X, params.Start.Y) || !grid.InBounds(params.Goal.X, params.Goal.Y) {
		return nil, fmt.Errorf("start %v or goal %v outside the %dx%d grid",
			params.Start, params.Goal, grid.Width(), grid.Height())
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	frames := make(chan models.Frame)
	rootView, err := root_view.NewRootView(ctx, frames)
	if err != nil {
		return nil, fmt.Errorf("build views: %w", err)
	}

	server := &Server{
		params:   params,
		logger:   logger,
		grid:     grid,
		frames:   frames,
		tracker:  models.NewTracker(ctx, grid, params.Start, params.Goal, frames, params.StepDelay),
		rootView: rootView,
	}

	router := mux.NewRouter()
	router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", server.serveWebsocket)
	router.HandleFunc("/api/result", server.serveResult).Methods(http.MethodGet)
	server.router = router
	return server, nil
}

// Handler returns the router serving the page, the websocket and the result api.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Serve runs the search and the http server until ctx is cancelled or either fails.
func (server *Server) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    server.params.Addr,
		Handler: server.router,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		server.Search(groupCtx)
		return nil
	})
	group.Go(func() error {
		server.logger.Info("serving", "addr", server.params.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// Search runs the search to completion, publishing a frame per progress event and a
// final frame, then closes the frame stream.
func (server *Server) Search(ctx context.Context) astar.Result {
	defer close(server.frames)
	if server.params.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, server.params.Deadline)
		defer cancel()
	}

	server.logger.Info("search started",
		"start", server.params.Start,
		"goal", server.params.Goal,
		"policy", server.params.ClosedPolicy)
	begin := time.Now()
	result := astar.FindPath(
		ctx,
		server.grid,
		server.params.Start,
		server.params.Goal,
		astar.WithObserver(server.tracker),
		astar.WithClosedPolicy(server.params.ClosedPolicy))

	server.mu.Lock()
	server.result = &result
	server.mu.Unlock()

	server.logger.Info("search finished",
		"outcome", result.Outcome,
		"cost", result.Cost,
		"expanded", result.Expanded,
		"elapsed", time.Since(begin))
	server.tracker.Finish(result)
	return result
}

// Result returns the search result once the search has finished.
func (server *Server) Result() (astar.Result, bool) {
	server.mu.Lock()
	defer server.mu.Unlock()
	if server.result == nil {
		return astar.Result{}, false
	}
	return *server.result, true
}

// serveWebsocket publishes view updates to the client until it disconnects.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := fastview.NewClient(server.rootView.Updates(), w, r)
	if err != nil {
		server.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	if err := cli.Sync(); err != nil {
		server.logger.Warn("websocket client failed", "remote", r.RemoteAddr, "err", err)
	}
}

// Serve the index.html main page, drawn from the latest frame.
func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	board := cell_views.Convert(server.tracker.Latest())
	if err := renderTemplate(w, server.rootView, board); err != nil {
		server.logger.Error("render index", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// resultResponse is the json form of the search state.
type resultResponse struct {
	Status   string             `json:"status"`
	Outcome  string             `json:"outcome,omitempty"`
	Cost     int                `json:"cost"`
	Expanded int                `json:"expanded"`
	Path     []grid_world.Point `json:"path,omitempty"`
}

func (server *Server) serveResult(w http.ResponseWriter, r *http.Request) {
	response := resultResponse{Status: "running"}
	if result, done := server.Result(); done {
		response = resultResponse{
			Status:   "done",
			Outcome:  result.Outcome.String(),
			Cost:     result.Cost,
			Expanded: result.Expanded,
			Path:     result.Path,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		server.logger.Warn("write result", "err", err)
	}
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data interface{},
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}

	err = t.Execute(w, data)
	return
}
