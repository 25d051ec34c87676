package server

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ludo-technologies/jsboard/domain"
)

const (
	pushWriteWait = 10 * time.Second
	pushPongWait  = 60 * time.Second
	pushPingEvery = (pushPongWait * 9) / 10
)

var pushUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     pushOriginAllowed,
}

// pushOriginAllowed accepts clients without an Origin header, pages served by
// this host, and pages served from a loopback address such as a local dev
// server.
func pushOriginAllowed(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// PushMessage is the frame sent for every published snapshot
type PushMessage struct {
	Type     string           `json:"type"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
}

// push streams every new snapshot to the client. The current snapshot, if
// any, is sent immediately after the upgrade.
func (h *handler) push(w http.ResponseWriter, r *http.Request) {
	conn, err := pushUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(pushPongWait)); err != nil {
		h.deps.Logger.Debug("push set read deadline failed", "err", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pushPongWait))
	})

	snapshots, unsubscribe := h.deps.Push.Subscribe()
	defer unsubscribe()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		ticker := time.NewTicker(pushPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-snapshots:
				if !ok {
					return
				}
				if err := conn.SetWriteDeadline(time.Now().Add(pushWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(PushMessage{Type: "snapshot", Snapshot: s}); err != nil {
					h.deps.Logger.Debug("push write failed", "err", err)
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(pushWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	h.deps.Logger.Debug("push client connected", "remote", r.RemoteAddr)
	go func() {
		// Inbound frames carry nothing; reading drives pong handling and
		// notices the client going away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	<-writerDone
	h.deps.Logger.Debug("push client disconnected", "remote", r.RemoteAddr)
}
