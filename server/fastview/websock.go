package fastview

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

// ErrSockCongestion is returned when a read or write waited too long for its turn.
var ErrSockCongestion = errors.New("sock op failed due to congestion")

const (
	readDeadline     = time.Second
	writeDeadline    = time.Second
	closeGracePeriod = 500 * time.Millisecond
)

// websock serializes access to a websocket conn, which allows one concurrent reader
// and one concurrent writer. Each semaphore is a chan with a single slot.
type websock struct {
	readSem  chan struct{}
	writeSem chan struct{}
	conn     *websocket.Conn
}

func newWebsock(conn *websocket.Conn) *websock {
	return &websock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		conn:     conn,
	}
}

// Conn exposes the conn for setup, such as installing handlers, before any concurrent use.
func (sock *websock) Conn() *websocket.Conn {
	return sock.conn
}

// Read runs fn once no other read is in progress.
func (sock *websock) Read(ctx context.Context, fn func(*websocket.Conn) error) error {
	return sock.exclusive(ctx, sock.readSem, readDeadline, fn)
}

// Write runs fn once no other write is in progress.
func (sock *websock) Write(ctx context.Context, fn func(*websocket.Conn) error) error {
	return sock.exclusive(ctx, sock.writeSem, writeDeadline, fn)
}

// exclusive holds sem while fn runs. It gives up without error when ctx ends first.
func (sock *websock) exclusive(
	ctx context.Context,
	sem chan struct{},
	wait time.Duration,
	fn func(*websocket.Conn) error,
) error {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil
	case sem <- struct{}{}:
		defer func() { <-sem }()
		return fn(sock.conn)
	case <-timer.C:
		return ErrSockCongestion
	}
}

// Close sends a close frame and closes the conn after a grace period for the peer's
// reply. Callers must have stopped all readers and writers.
func (sock *websock) Close() {
	sock.readSem <- struct{}{}
	sock.writeSem <- struct{}{}

	_ = sock.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	time.Sleep(closeGracePeriod)
	sock.conn.Close()
}
