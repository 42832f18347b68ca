/*
Package client assembles the collaboration client.

This file contains the channel proxy handed to the room session and the cursor
layer, and the browser-visibility state the room session controls. The proxy
forwards publishes to whichever channel the manager currently holds, turning
publishes with no open channel into typed errors instead of panics.
*/
package client

import (
	"context"
	"sync"

	"liveroom/internal/app/room"
	"liveroom/internal/app/session"
	"liveroom/internal/pkg/errs"
)

// channelProxy satisfies room.Channel and cursor.Publisher against the
// manager's current channel.
type channelProxy struct {
	manager *session.Manager
}

func (p *channelProxy) CreateRoom(name, password string, isPrivate bool) error {
	conn := p.manager.Connection()
	if conn == nil {
		return errs.NewError(errs.ErrNotConnected)
	}
	return conn.CreateRoom(name, password, isPrivate)
}

func (p *channelProxy) Join(ctx context.Context, roomID, password string) (room.JoinResult, error) {
	conn := p.manager.Connection()
	if conn == nil {
		return room.JoinResult{}, errs.NewError(errs.ErrNotConnected)
	}
	return conn.Join(ctx, roomID, password)
}

func (p *channelProxy) Leave(roomID string) error {
	conn := p.manager.Connection()
	if conn == nil {
		return errs.NewError(errs.ErrNotConnected)
	}
	return conn.Leave(roomID)
}

func (p *channelProxy) Delete(roomID string) error {
	conn := p.manager.Connection()
	if conn == nil {
		return errs.NewError(errs.ErrNotConnected)
	}
	return conn.Delete(roomID)
}

func (p *channelProxy) CursorMove(x, y float64, roomID string) error {
	conn := p.manager.Connection()
	if conn == nil {
		return errs.NewError(errs.ErrNotConnected)
	}
	return conn.CursorMove(x, y, roomID)
}

func (p *channelProxy) CursorLeave(roomID string) error {
	conn := p.manager.Connection()
	if conn == nil {
		return errs.NewError(errs.ErrNotConnected)
	}
	return conn.CursorLeave(roomID)
}

// browserState tracks room-browser visibility on behalf of the render layer.
// The room session owns the transitions; the render layer only reads them.
type browserState struct {
	mu      sync.RWMutex
	visible bool
}

// SetRoomBrowserVisible implements room.Browser.
func (b *browserState) SetRoomBrowserVisible(visible bool) {
	b.mu.Lock()
	b.visible = visible
	b.mu.Unlock()
}

// Visible reports the current room-browser visibility.
func (b *browserState) Visible() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.visible
}
