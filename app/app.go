package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/searchktools/quickfast/config"
	"github.com/searchktools/quickfast/core/multicast"
	"github.com/searchktools/quickfast/core/observability"
)

// App owns a receiver's lifecycle: wiring configuration into a
// multicast.Receiver, starting it, and shutting it down cleanly on
// SIGINT/SIGTERM or on request.
type App struct {
	cfg      *config.Config
	receiver *multicast.Receiver
	monitor  *observability.ConsumerMonitor
}

// New creates an application instance from cfg. The receiver itself is not
// started until Run is called.
func New(cfg *config.Config) *App {
	receiverCfg := multicast.Config{
		Group:     cfg.Group,
		Interface: cfg.Interface,
		Port:      cfg.Port,
	}
	return &App{
		cfg:      cfg,
		receiver: multicast.New(receiverCfg),
		monitor:  observability.NewConsumerMonitor(),
	}
}

// Receiver returns the underlying receiver, for callers that need direct
// access (tests, metrics endpoints).
func (a *App) Receiver() *multicast.Receiver { return a.receiver }

// Monitor returns the consumer latency monitor wired into the receiver's
// consumer, if Run has wrapped one in.
func (a *App) Monitor() *observability.ConsumerMonitor { return a.monitor }

// Run starts the receiver with consumer, blocking until shutdown is
// requested (SIGINT/SIGTERM, or the consumer itself requesting a stop) and
// the reactor goroutine has released its resources.
func (a *App) Run(consumer multicast.BufferConsumer) error {
	go a.awaitSignal()

	log.Printf("starting multicast receiver on group %s port %d [%s]", a.cfg.Group, a.cfg.Port, a.cfg.Env)

	monitored := multicast.NewMonitoredConsumer(consumer, a.monitor)
	if err := a.receiver.Start(monitored, a.cfg.BufferSize, a.cfg.BufferCount); err != nil {
		return fmt.Errorf("starting receiver: %w", err)
	}

	a.receiver.Wait()
	return nil
}

func (a *App) awaitSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("signal received: %v, shutting down", sig)
	a.receiver.Stop()
}
