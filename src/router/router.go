// Package router assembles a single routing node from its configuration:
// topology, store, transport, node and HTTP service.
package router

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/intree/src/config"
	"github.com/mosaicnetworks/intree/src/net"
	"github.com/mosaicnetworks/intree/src/node"
	"github.com/mosaicnetworks/intree/src/peers"
	"github.com/mosaicnetworks/intree/src/service"
	"github.com/mosaicnetworks/intree/src/store"
	"github.com/mosaicnetworks/intree/src/telemetry"
)

// Router is the top-level object of a node process. Fields that are set
// before Init (Topology, Transport, Store) are used as they are.
type Router struct {
	Config    *config.Config
	Topology  *peers.Topology
	Transport net.Transport
	Store     store.Store
	Metrics   *telemetry.Metrics
	Node      *node.Node
	Service   *service.Service

	logger *logrus.Entry
}

// NewRouter ...
func NewRouter(conf *config.Config) *Router {
	return &Router{
		Config: conf,
	}
}

// Init validates the configuration and builds every component.
func (r *Router) Init() error {
	r.logger = r.Config.Logger()

	if err := r.Config.Validate(); err != nil {
		return err
	}

	if err := r.initTopology(); err != nil {
		return err
	}

	if err := r.initStore(); err != nil {
		return err
	}

	if err := r.initTransport(); err != nil {
		return err
	}

	r.initNode()
	r.initService()

	return nil
}

func (r *Router) initTopology() error {
	if r.Topology == nil {
		topo, err := peers.NewTopologyFile(r.Config.DataDir, r.Config.TopologyPath()).Topology(r.Config.NumNodes)
		if err != nil {
			return err
		}
		r.Topology = topo
	}

	if r.Config.Symmetric {
		r.Topology = r.Topology.Symmetric()
	}

	if len(r.Topology.Neighbors(r.Config.ID())) == 0 {
		r.logger.WithField("id", r.Config.NodeID).Warn("Node has no neighbors in topology")
	}

	return nil
}

func (r *Router) initStore() error {
	if r.Store != nil {
		return nil
	}

	var err error
	switch r.Config.Store {
	case config.StoreInmem:
		r.Store = store.NewInmemStore()
		r.logger.Debug("created new in-mem store")
	case config.StoreBadger:
		dir := filepath.Join(r.Config.DatabaseDir, fmt.Sprintf("node_%d", r.Config.NodeID))
		r.logger.WithField("path", dir).Debug("Attempting to load or create database")
		r.Store, err = store.NewBadgerStore(dir, r.Config.Logger())
	case config.StoreFile:
		r.Store, err = store.NewFileStore(r.Config.DataDir, r.Config.ID())
	}
	if err != nil {
		return err
	}

	if n := r.Store.Len(); n > 0 {
		r.logger.WithField("records", n).Debug("loaded existing received records")
	}
	return nil
}

func (r *Router) initTransport() error {
	if r.Transport != nil {
		return nil
	}

	switch r.Config.Transport {
	case config.TransportFile:
		dir := r.Config.ChannelPath()
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "creating channel directory")
		}
		trans, err := net.NewFileTransport(dir, r.Config.NumNodes, r.Config.Logger().WithField("ns", "transport"))
		if err != nil {
			return err
		}
		r.Transport = trans
	case config.TransportInmem:
		trans := net.NewInmemTransport(r.Config.NumNodes)
		trans.ConnectTopology(r.Topology)
		r.Transport = trans
	}
	return nil
}

func (r *Router) initNode() {
	id := r.Config.ID()

	conf := node.NewConfig(r.Config, id, r.Topology.Neighbors(id))
	if dest, ok := r.Config.Destination(); ok {
		conf.Dest = dest
		conf.Message = r.Config.Message
	}

	if r.Metrics == nil {
		r.Metrics = telemetry.NewMetrics()
	}
	conf.Metrics = r.Metrics.Node(id)

	r.logger.WithFields(logrus.Fields{
		"id":        id,
		"neighbors": conf.Neighbors,
		"dest":      r.Config.Dest,
	}).Debug("NODE")

	r.Node = node.NewNode(conf, r.Transport, r.Store)
}

func (r *Router) initService() {
	if !r.Config.NoService {
		r.Service = service.NewService(r.Config.ServiceAddr, []*node.Node{r.Node}, r.Metrics, r.logger)
	}
}

// Run starts the service, if any, and runs the node until it has executed
// its duration or ctx is cancelled.
func (r *Router) Run(ctx context.Context) error {
	if r.Service != nil {
		go r.Service.Serve()
	}
	return r.Node.Run(ctx)
}

// Shutdown stops the node and releases every component, reporting all the
// errors encountered.
func (r *Router) Shutdown() error {
	var result error

	if r.Node != nil {
		r.Node.Shutdown()
	}

	if r.Service != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.Service.Shutdown(ctx); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "service"))
		}
	}

	if r.Transport != nil {
		if err := r.Transport.Close(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "transport"))
		}
	}

	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "store"))
		}
	}

	return result
}
