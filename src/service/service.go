// Package service exposes the state of running nodes over HTTP.
package service

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/ugorji/go/codec"

	"github.com/mosaicnetworks/intree/src/node"
	"github.com/mosaicnetworks/intree/src/peers"
	"github.com/mosaicnetworks/intree/src/telemetry"
)

// Service ...
type Service struct {
	sync.Mutex

	bindAddress string
	nodes       map[peers.NodeID]*node.Node
	metrics     *telemetry.Metrics
	mux         *http.ServeMux
	server      *http.Server
	logger      *logrus.Entry
}

// NewService creates a service for the given nodes. metrics may be nil, in
// which case /metrics is not served.
func NewService(bindAddress string, nodes []*node.Node, metrics *telemetry.Metrics, logger *logrus.Entry) *Service {
	service := Service{
		bindAddress: bindAddress,
		nodes:       make(map[peers.NodeID]*node.Node),
		metrics:     metrics,
		mux:         http.NewServeMux(),
		logger:      logger,
	}

	for _, n := range nodes {
		service.nodes[n.ID()] = n
	}

	service.registerHandlers()

	return &service
}

func (s *Service) registerHandlers() {
	s.logger.Debug("Registering API handlers")
	s.handle("nodes", "/nodes", s.GetNodes)
	s.handle("stats", "/stats", s.GetStats)
	s.handle("stats", "/stats/", s.GetStats)
	s.handle("intree", "/intree", s.GetIntree)
	s.handle("intree", "/intree/", s.GetIntree)
	s.handle("received", "/received", s.GetReceived)
	s.handle("received", "/received/", s.GetReceived)
	if s.metrics != nil {
		s.mux.Handle("/metrics", s.metrics.Handler())
	}
}

func (s *Service) handle(op, pattern string, fn func(http.ResponseWriter, *http.Request)) {
	var h http.Handler = s.makeHandler(fn)
	if s.metrics != nil {
		h = s.metrics.Instrument(op, h)
	}
	s.mux.Handle(pattern, h)
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fn(w, r)
	}
}

// Handler returns the handler serving the API, for embedding in another
// server.
func (s *Service) Handler() http.Handler {
	return s.mux
}

// Serve calls ListenAndServe. This is a blocking call which returns once
// Shutdown is called.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving API")

	s.Lock()
	s.server = &http.Server{Addr: s.bindAddress, Handler: s.mux}
	srv := s.server
	s.Unlock()

	err := srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		s.logger.Error(err)
	}
}

// Shutdown stops a server started with Serve.
func (s *Service) Shutdown(ctx context.Context) error {
	s.Lock()
	srv := s.server
	s.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// GetNodes returns the ids of the hosted nodes.
func (s *Service) GetNodes(w http.ResponseWriter, r *http.Request) {
	encode(w, s.ids())
}

// GetStats returns the stats of one node, /stats/<id>, or of every node
// keyed by id.
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	s.perNode(w, r, "/stats", func(n *node.Node) (interface{}, error) {
		return n.GetStats(), nil
	})
}

// GetIntree returns the published snapshot of one node, or of every node.
func (s *Service) GetIntree(w http.ResponseWriter, r *http.Request) {
	s.perNode(w, r, "/intree", func(n *node.Node) (interface{}, error) {
		return newTreeInfo(n.Snapshot()), nil
	})
}

// GetReceived returns the received-record log of one node, or of every
// node.
func (s *Service) GetReceived(w http.ResponseWriter, r *http.Request) {
	s.perNode(w, r, "/received", func(n *node.Node) (interface{}, error) {
		recs, err := n.Store().Records()
		if err != nil {
			return nil, err
		}
		lines := make([]string, len(recs))
		for i, rec := range recs {
			lines[i] = rec.Line()
		}
		return lines, nil
	})
}

func (s *Service) perNode(w http.ResponseWriter, r *http.Request, prefix string, get func(*node.Node) (interface{}, error)) {
	param := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")

	if param == "" {
		res := make(map[string]interface{})
		for _, id := range s.ids() {
			v, err := get(s.nodes[id])
			if err != nil {
				s.fail(w, err, id)
				return
			}
			res[id.String()] = v
		}
		encode(w, res)
		return
	}

	id, err := strconv.Atoi(param)
	if err != nil {
		s.logger.WithError(err).Errorf("Parsing node parameter %s", param)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n, ok := s.nodes[peers.NodeID(id)]
	if !ok {
		http.Error(w, "unknown node "+param, http.StatusNotFound)
		return
	}

	v, err := get(n)
	if err != nil {
		s.fail(w, err, n.ID())
		return
	}
	encode(w, v)
}

func (s *Service) fail(w http.ResponseWriter, err error, id peers.NodeID) {
	s.logger.WithError(err).Errorf("Serving node %d", id)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (s *Service) ids() []peers.NodeID {
	res := make([]peers.NodeID, 0, len(s.nodes))
	for id := range s.nodes {
		res = append(res, id)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

func encode(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(w, jh)

	enc.Encode(v)
}
