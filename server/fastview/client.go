package fastview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// The page only sends control frames, so anything larger is a misbehaving peer.
	maxMessageSize = 8192

	// Updates arriving faster than this are coalesced into the latest one.
	pubResolution  = 100 * time.Millisecond
	pingResolution = 200 * time.Millisecond
	// Silence longer than this, about four missed pongs, means the peer is gone.
	pongWait = 4 * pingResolution
)

var upgrader = websocket.Upgrader{}

var ErrPongDeadlineExceeded = errors.New("client disconnect, pong deadline exceeded")

// Client pushes updates one way to a browser over a websocket. Each update must describe
// the full page state it touches, since updates received within one publication period
// are collapsed into the last of them.
type Client[T any] struct {
	updates <-chan T
	sock    *websock
	ctx     context.Context
}

// NewClient upgrades the request to a websocket publishing from updates. The client lives
// until the request context ends or the peer goes away.
func NewClient[T any](
	updates <-chan T,
	w http.ResponseWriter,
	r *http.Request,
) (*Client[T], error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		return nil, err
	}
	conn.SetReadLimit(maxMessageSize)

	return &Client[T]{
		updates: updates,
		sock:    newWebsock(conn),
		ctx:     r.Context(),
	}, nil
}

// Sync publishes updates and watches the peer until it disconnects, which returns nil,
// or until a read, write or liveness check fails. After the updates chan closes the
// last pending update is delivered and the socket stays open until the peer leaves.
func (cli *Client[T]) Sync() error {
	defer cli.sock.Close()

	ctx, peerGone := context.WithCancel(cli.ctx)
	defer peerGone()
	group, groupCtx := errgroup.WithContext(ctx)

	// The reader is also what delivers pongs, so it runs for the life of the client.
	group.Go(func() error {
		defer peerGone()
		return cli.readMessages(groupCtx)
	})
	group.Go(func() error {
		return cli.pingPong(groupCtx)
	})
	group.Go(func() error {
		return cli.publish(groupCtx)
	})
	return group.Wait()
}

// readMessages discards inbound messages. Websocket read errors are permanent, so any
// error ends the client; a normal closure is not reported as one.
func (cli *Client[T]) readMessages(ctx context.Context) error {
	for {
		err := cli.sock.Read(ctx, func(conn *websocket.Conn) error {
			_, _, err := conn.ReadMessage()
			return err
		})
		switch {
		case ctx.Err() != nil, isClosure(err):
			return nil
		case err != nil:
			return err
		}
	}
}

// pingPong pings the peer every pingResolution and fails once no pong has arrived
// within pongWait.
func (cli *Client[T]) pingPong(ctx context.Context) error {
	pongs := make(chan struct{}, 1)
	cli.sock.Conn().SetPongHandler(func(string) error {
		select {
		case pongs <- struct{}{}:
		default:
		}
		return nil
	})

	lastPong := time.Now()
	pings := channerics.NewTicker(ctx.Done(), pingResolution)
	for {
		select {
		case <-ctx.Done():
			// ReadMessage ignores ctx; expire the read so the reader can return.
			_ = cli.sock.Conn().SetReadDeadline(time.Now())
			return nil
		case <-pongs:
			lastPong = time.Now()
		case <-pings:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			err := cli.sock.Write(ctx, func(conn *websocket.Conn) error {
				return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			})
			if isError(err) {
				return fmt.Errorf("ping failed: %w", err)
			}
		}
	}
}

// publish writes the newest update once per pubResolution, and flushes it when the
// updates chan closes.
func (cli *Client[T]) publish(ctx context.Context) error {
	var (
		latest  T
		pending bool
	)
	ticks := channerics.NewTicker(ctx.Done(), pubResolution)
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-cli.updates:
			if !ok {
				if pending {
					return cli.send(ctx, latest)
				}
				return nil
			}
			latest, pending = update, true
		case <-ticks:
			if !pending {
				continue
			}
			if err := cli.send(ctx, latest); err != nil {
				return err
			}
			pending = false
		}
	}
}

func (cli *Client[T]) send(ctx context.Context, update T) error {
	err := cli.sock.Write(ctx, func(conn *websocket.Conn) error {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return conn.WriteJSON(update)
	})
	if isError(err) {
		return fmt.Errorf("publish failed: %w", err)
	}
	return nil
}

// isError reports errors other than the peer closing normally.
func isError(err error) bool {
	return err != nil && !isClosure(err)
}

func isClosure(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
