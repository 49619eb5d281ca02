// Package app wires every subsystem together into a single running
// instance: registries, codec, router, middleware, response builder,
// observe registry, event bus, hooks, metrics, plugin manager, and the
// UDP/TCP transports. It is the library's top-level entry point.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/coapkit/coapkit/bus"
	"github.com/coapkit/coapkit/codec"
	"github.com/coapkit/coapkit/config"
	"github.com/coapkit/coapkit/discovery"
	"github.com/coapkit/coapkit/hooks"
	"github.com/coapkit/coapkit/message"
	"github.com/coapkit/coapkit/metrics"
	"github.com/coapkit/coapkit/middleware"
	"github.com/coapkit/coapkit/observe"
	"github.com/coapkit/coapkit/plugin"
	"github.com/coapkit/coapkit/registry"
	"github.com/coapkit/coapkit/response"
	"github.com/coapkit/coapkit/router"
	"github.com/coapkit/coapkit/transport/tcp"
	"github.com/coapkit/coapkit/transport/udp"
)

// FrameworkVersion is compared against a plugin's Requires constraint.
const FrameworkVersion = "1.0.0"

// App owns every subsystem instance for one running framework.
type App struct {
	Config   *config.Config
	Log      *logrus.Entry
	Codecs   *codec.Registry
	Router   *router.Router
	Chain    *middleware.Chain
	Response *response.Builder
	Observe  *observe.Registry
	Bus      *bus.Bus
	Hooks    *hooks.Emitter
	Plugins  *plugin.Manager
	Metrics  *metrics.Metrics

	udpServer *udp.Server
	tcpServer *tcp.Server
}

// New builds an App from cfg. Additional middleware can be installed on
// the returned App.Chain before calling Serve.
func New(cfg *config.Config, reg prometheus.Registerer, log *logrus.Entry) (*App, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	a := &App{
		Config: cfg,
		Log:    log,
		Codecs: codec.NewDefaultRegistry(),
		Router: router.New(),
		Chain:  middleware.New(),
	}

	a.Bus = bus.New(
		bus.WithBuffering(cfg.MessageBufferCount, cfg.MessageBufferTTL),
		bus.WithLogger(log),
	)
	a.Hooks = hooks.New(a.Bus)
	a.Observe = observe.New(a.Codecs, a.Bus)
	a.Bus.SetObserverBridge(a.Observe, registry.ContentFormatJSON)
	a.Response = response.NewBuilder(a.Codecs)
	a.Plugins = plugin.New(FrameworkVersion, a.Hooks)
	if reg != nil {
		a.Metrics = metrics.New(reg)
	}

	if err := a.installDefaultRoutes(); err != nil {
		return nil, fmt.Errorf("app: install default routes: %w", err)
	}

	return a, nil
}

func (a *App) installDefaultRoutes() error {
	pingHandler := func(in *message.Inbound) (*message.Outbound, error) {
		return a.Response.Build(in, registry.Content, map[string]string{"message": "Pong"}, []uint32{registry.ContentFormatJSON}, nil)
	}
	echoHandler := func(in *message.Inbound) (*message.Outbound, error) {
		var req struct {
			Message string `json:"message"`
		}
		if err := in.Decode(a.Codecs, &req); err != nil {
			return a.Response.BadRequest("echo: " + err.Error()), nil
		}
		return a.Response.Build(in, registry.Content, map[string]string{"echo": req.Message}, []uint32{registry.ContentFormatJSON}, nil)
	}
	discoveryHandler := func(in *message.Inbound) (*message.Outbound, error) {
		body := discovery.LinkFormat(a.Router)
		return a.Response.Raw(registry.Content, registry.ContentFormatLinkFormat, []byte(body)), nil
	}
	return a.Router.InstallDefaults(discoveryHandler, pingHandler, echoHandler)
}

// Serve starts both the UDP and TCP listeners and blocks until ctx is
// cancelled, then shuts both down.
func (a *App) Serve(ctx context.Context) error {
	var err error
	a.udpServer, err = udp.New(a.Config.UDPListenAddr, a.Router, a.Chain, a.Observe,
		udp.WithWorkers(a.Config.UDPWorkerProcesses, a.Config.UDPWorkerThreads),
		udp.WithLogger(a.Log))
	if err != nil {
		return fmt.Errorf("app: bind udp: %w", err)
	}

	a.tcpServer, err = tcp.New(a.Config.TCPListenAddr, a.Router, a.Chain,
		tcp.WithMaxMessageSize(a.Config.MaxMessageSize),
		tcp.WithLogger(a.Log))
	if err != nil {
		return fmt.Errorf("app: bind tcp: %w", err)
	}

	go a.Observe.RunSweep(ctx, a.Config.ObserveSweepInterval, a.Config.ObserveMaxAge, a.Log)

	a.Hooks.Emit(hooks.ServerStarting, map[string]interface{}{
		"udp_addr": a.Config.UDPListenAddr,
		"tcp_addr": a.Config.TCPListenAddr,
	})

	errCh := make(chan error, 2)
	go func() { errCh <- a.udpServer.Serve(ctx) }()
	go func() { errCh <- a.tcpServer.Serve(ctx) }()

	a.Hooks.Emit(hooks.ServerStarted, nil)

	<-ctx.Done()
	a.Hooks.Emit(hooks.ServerStopping, nil)
	return nil
}
