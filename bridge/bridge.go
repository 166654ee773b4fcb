/*Package bridge exposes the gantry controller's line protocol as an HTTP
API for web dashboards.  One bridge owns one Commander (usually a
comm.Device over USB serial) and forwards each request as a single
JSON-line round trip, caching the last good status so the dashboard keeps
rendering when the device is busy or briefly unplugged.
*/
package bridge

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// pixelsPerRev converts dashboard jog presses (pixels) to motor
// revolutions, matching the controller's steps-per-revolution.
const pixelsPerRev = 1600.0

// Commander is one request/reply round trip on the line channel.
// comm.Device satisfies it; tests use an in-process loopback.
type Commander interface {
	SendRecv([]byte) ([]byte, error)
}

// record is a decoded line-protocol object in either direction.
type record = map[string]interface{}

// Server is the HTTP bridge.
type Server struct {
	dev  Commander
	lock *Lock

	mu     sync.Mutex
	cached record
}

// New returns a Server over the given device channel.
func New(dev Commander) *Server {
	return &Server{
		dev:  dev,
		lock: NewLock(),
		cached: record{
			"run":    false,
			"soil":   []interface{}{0, 0, 0},
			"pWater": false,
			"pFert":  false,
		},
	}
}

// Router returns the route tree.  Handlers use GET with query
// parameters; the dashboard this serves predates the redesign and its
// URLs are load-bearing.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.lock.Check)
	r.Get("/status", s.status)
	r.Get("/tree", s.tree)
	r.Get("/pump", s.pump)
	r.Get("/home", s.home)
	r.Get("/recalibrate", s.recalibrate)
	r.Get("/move", s.move)
	r.Get("/serial/send", s.rawSend)
	return r
}

// send performs one round trip, decoding the reply.
func (s *Server) send(req record) (record, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encoding request")
	}
	logrus.WithField("cmd", req["cmd"]).Debug("forwarding to device")
	reply, err := s.dev.SendRecv(b)
	if err != nil {
		return nil, errors.Wrap(err, "device round trip")
	}
	var out record
	if err := json.Unmarshal(reply, &out); err != nil {
		return nil, errors.Wrapf(err, "decoding reply %q", reply)
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("writing response")
	}
}

// status proxies a live status when possible and falls back to the last
// good one while the device is busy or unreachable.  The soil array is
// renamed moisture for the dashboard.
func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	if !s.lock.Locked() {
		if reply, err := s.send(record{"cmd": "status"}); err == nil {
			if _, ok := reply["soil"]; ok {
				s.mu.Lock()
				s.cached = reply
				s.mu.Unlock()
			}
		} else {
			logrus.WithError(err).Warn("status round trip failed, serving cache")
		}
	}
	s.mu.Lock()
	cached := s.cached
	s.mu.Unlock()
	writeJSON(w, record{
		"run":      cached["run"],
		"moisture": cached["soil"],
		"pWater":   cached["pWater"],
		"pFert":    cached["pFert"],
	})
}

// tree forwards a slot move.  The dashboard numbers slots 0-8; the
// controller numbers them 1-9.
func (s *Server) tree(w http.ResponseWriter, r *http.Request) {
	idS := r.URL.Query().Get("id")
	if idS == "" {
		http.Error(w, `{"error": "Missing id"}`, http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idS)
	if err != nil {
		http.Error(w, `{"error": "Invalid id"}`, http.StatusBadRequest)
		return
	}
	s.forward(w, record{"cmd": "tree", "id": id + 1})
}

func (s *Server) pump(w http.ResponseWriter, r *http.Request) {
	typ := r.URL.Query().Get("type")
	if typ == "" {
		http.Error(w, `{"error": "Missing type"}`, http.StatusBadRequest)
		return
	}
	s.forward(w, record{"cmd": "pump", "type": typ})
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	s.forward(w, record{"cmd": "home"})
}

// recalibrate holds the calibration lock for the whole round trip; the
// controller blocks until both axes are homed and measured.
func (s *Server) recalibrate(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.forward(w, record{"cmd": "recalibrate"})
}

// move converts dashboard jog pixels to revolutions.  Unparseable or
// absent offsets read as 0, so a half-filled jog form moves one axis
// instead of erroring; the dashboard relies on this.
func (s *Server) move(w http.ResponseWriter, r *http.Request) {
	x, _ := strconv.Atoi(r.URL.Query().Get("x"))
	y, _ := strconv.Atoi(r.URL.Query().Get("y"))
	s.forward(w, record{
		"cmd":   "move",
		"revsX": float64(x) / pixelsPerRev,
		"revsY": float64(y) / pixelsPerRev,
	})
}

// rawSend forwards an arbitrary JSON record typed into the dashboard's
// debug console.
func (s *Server) rawSend(w http.ResponseWriter, r *http.Request) {
	cmdS := r.URL.Query().Get("cmd")
	if cmdS == "" {
		http.Error(w, `{"error": "Missing cmd"}`, http.StatusBadRequest)
		return
	}
	var req record
	if err := json.Unmarshal([]byte(cmdS), &req); err != nil {
		http.Error(w, `{"error": "Invalid JSON"}`, http.StatusBadRequest)
		return
	}
	s.forward(w, req)
}

func (s *Server) forward(w http.ResponseWriter, req record) {
	reply, err := s.send(req)
	if err != nil {
		logrus.WithError(err).Error("device round trip failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, reply)
}
