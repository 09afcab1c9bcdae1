package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"chunkfall.ai/internal/protocol"
	"chunkfall.ai/internal/sim/engine"
)

// Source is the engine surface the observer needs.
type Source interface {
	ObserverJoin() chan<- engine.ObserverJoinRequest
	ObserverLeave() chan<- string
	LatestStatus() protocol.StatusFrame
}

type Server struct {
	src Source
	log *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

func NewServer(src Source, logger *log.Logger) *Server {
	return &Server{
		src: src,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // loopback only, see below
		},
	}
}

// BootstrapHandler returns the most recent status frame as JSON.
func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(s.src.LatestStatus())
	}
}

// WSHandler streams a GEN_STATUS frame after every production cycle. Slow
// clients only ever see the newest frame.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sid := fmt.Sprintf("O%d", s.nextID.Add(1))
		out := make(chan []byte, 1)

		select {
		case s.src.ObserverJoin() <- engine.ObserverJoinRequest{SessionID: sid, Out: out}:
		default:
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server busy"), time.Now().Add(time.Second))
			return
		}
		defer func() {
			select {
			case s.src.ObserverLeave() <- sid:
			default:
				// Engine loop is stopping; nothing else to do.
			}
		}()
		if s.log != nil {
			s.log.Debug("observer joined", "session", sid, "remote", r.RemoteAddr)
		}

		// Send the current state right away so clients need not wait a cycle.
		if b, err := json.Marshal(s.src.LatestStatus()); err == nil {
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: observers send nothing meaningful, but reading is
		// required to notice the close.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
		if s.log != nil {
			s.log.Debug("observer left", "session", sid)
		}
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
