package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/goesarchive/goescat/pkg/events"
	"github.com/goesarchive/goescat/pkg/log"
	"github.com/goesarchive/goescat/pkg/metrics"
)

// pingInterval matches the application-level heartbeat §5 calls out as
// the ground truth for client liveness ("ping_interval=30s").
const pingInterval = 30 * time.Second

// subscriptionPollTimeout is how long the writer loop blocks on a single
// Receive call before looping back to check for a ping/shutdown (§4.8
// step 5).
const subscriptionPollTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// perIPLimiter enforces the per-IP open-connection cap from §4.8.
type perIPLimiter struct {
	mu    sync.Mutex
	limit int
	open  map[string]int
}

func newPerIPLimiter(limit int) *perIPLimiter {
	return &perIPLimiter{limit: limit, open: make(map[string]int)}
}

func (l *perIPLimiter) acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.open[ip] >= l.limit {
		return false
	}
	l.open[ip]++
	return true
}

func (l *perIPLimiter) release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.open[ip]--
	if l.open[ip] <= 0 {
		delete(l.open, ip)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// terminalStatuses are the job statuses whose arrival on the writer loop
// ends the bridge session (§4.8 step 6).
var terminalStatuses = map[string]bool{
	"completed": true, "completed_partial": true, "failed": true, "cancelled": true,
}

// runBridge implements the three cooperative loops shared by every
// WebSocket endpoint: reader discards inbound frames until disconnect,
// writer forwards subscription messages (exiting on the first terminal
// status), pinger sends an application-level heartbeat every 30s. Any
// loop ending tears down the others via ctx cancellation (§4.8).
func runBridge(conn *websocket.Conn, sub *events.Subscription) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer wg.Done()
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			payload, err := sub.Receive(ctx, subscriptionPollTimeout)
			if err != nil {
				log.WithComponent("httpapi.ws").Debug().Err(err).Msg("subscription receive failed")
				return
			}
			if payload == nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
			var probe struct {
				Status string `json:"status"`
			}
			if json.Unmarshal(payload, &probe) == nil && terminalStatuses[probe.Status] {
				return
			}
		}
	}()

	go func() {
		defer wg.Done()
		defer cancel()
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
					return
				}
			}
		}
	}()

	// The reader goroutine blocks in conn.ReadMessage with no deadline, so
	// when the writer or pinger exits and cancels ctx, nothing else
	// unblocks it. Close the connection once any loop decides the session
	// is over so ReadMessage returns and the reader can exit too.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	wg.Wait()
}

// serveBridge upgrades the connection, enforces the per-IP limit,
// subscribes to topic, and runs the bridge loops. It releases the
// connection slot and subscription on every return path.
func (s *Server) serveBridge(w http.ResponseWriter, r *http.Request, topic string) {
	ip := clientIP(r)
	if !s.connLimiter.acquire(ip) {
		http.Error(w, "too many open connections for this client", http.StatusTooManyRequests)
		return
	}
	defer s.connLimiter.release(ip)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithComponent("httpapi.ws").Debug().Err(err).Msg("upgrade failed")
		return
	}
	metrics.WSConnectionsActive.Inc()
	defer metrics.WSConnectionsActive.Dec()
	defer conn.Close()

	sub := events.Subscribe(r.Context(), s.RDB, topic)
	defer sub.Close()

	if err := conn.WriteJSON(map[string]string{"type": "connected"}); err != nil {
		return
	}

	runBridge(conn, sub)
}

// handleWSJob is the per-job progress stream (§4.8, §6).
func (s *Server) handleWSJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["job_id"]
	s.serveBridge(w, r, events.JobTopic(jobID))
}

// handleWSEvents is the global event stream (§4.8, §6).
func (s *Server) handleWSEvents(w http.ResponseWriter, r *http.Request) {
	s.serveBridge(w, r, events.GlobalTopic)
}

// handleWSStatus is heartbeat-only: no subscription, just the connected
// frame and the pinger loop, useful as a cheap client-side liveness probe
// (§6 "/ws/status").
func (s *Server) handleWSStatus(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if !s.connLimiter.acquire(ip) {
		http.Error(w, "too many open connections for this client", http.StatusTooManyRequests)
		return
	}
	defer s.connLimiter.release(ip)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	metrics.WSConnectionsActive.Inc()
	defer metrics.WSConnectionsActive.Dec()
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "connected"}); err != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
					return
				}
			}
		}
	}()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	wg.Wait()
}
