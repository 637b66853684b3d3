// Command beefy-node wires the core gadget components (keystore, voter
// worker, notification stream, metrics) into a runnable process. The light
// client and leaf provider are not constructed here.
//
// Grounded on certenIO-certen-validator/main.go's top-level wiring style:
// build a Config, construct collaborators, start background goroutines
// against a cancellable context, serve an HTTP endpoint, then block on a
// signal channel for graceful shutdown.
package main

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oceanbridge/beefy-gadget/pkg/config"
	"github.com/oceanbridge/beefy-gadget/pkg/keystore"
	"github.com/oceanbridge/beefy-gadget/pkg/metrics"
	"github.com/oceanbridge/beefy-gadget/pkg/notification"
	"github.com/oceanbridge/beefy-gadget/pkg/primitives"
	"github.com/oceanbridge/beefy-gadget/pkg/voter"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.New(os.Stdout, "[beefy-node] ", log.LstdFlags)

	// A local key is generated on every start for this standalone binary;
	// a production deployment would instead load one from a persistent
	// key file via the keystore's construction path.
	priv, err := gethcrypto.GenerateKey()
	if err != nil {
		return fmt.Errorf("generate local key: %w", err)
	}
	ks, err := keystore.New([]*ecdsa.PrivateKey{priv})
	if err != nil {
		return fmt.Errorf("construct keystore: %w", err)
	}

	var localID primitives.AuthorityID
	copy(localID[:], gethcrypto.CompressPubkey(&priv.PublicKey))
	set := primitives.ValidatorSet{Authorities: []primitives.AuthorityID{localID}, ID: primitives.GenesisAuthoritySetID}

	registry := prometheus.NewRegistry()
	metricsSet := metrics.NewSet(registry)

	notifications := notification.NewStream()

	finality := newNullFinalitySource()
	gossip := newNullGossipEngine(cfg.GossipPeerSlots)

	w := voter.New(
		log.New(logger.Writer(), "[voter] ", log.LstdFlags),
		ks,
		finality,
		gossip,
		notifications,
		metricsSet,
		set,
		voter.Config{MinBlockDelta: cfg.MinBlockDelta, GossipStaleWindow: cfg.GossipStaleWindow},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		w.Run(ctx.Done())
		close(done)
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})

	httpServer := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

	go func() {
		logger.Printf("metrics/health listening on %s", cfg.MetricsAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Printf("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http server shutdown error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(cfg.ShutdownTimeout):
		logger.Printf("voter worker did not stop within shutdown timeout")
	}

	logger.Printf("stopped")
	return nil
}

// nullFinalitySource and nullGossipEngine are placeholders for the
// out-of-scope external collaborators (§1): a real deployment injects a
// FinalitySource backed by the primary consensus engine and a GossipEngine
// backed by the network layer. Both close over never-firing channels.
type nullFinalitySource struct {
	ch chan voter.FinalityNotification
}

func newNullFinalitySource() *nullFinalitySource {
	return &nullFinalitySource{ch: make(chan voter.FinalityNotification)}
}

func (n *nullFinalitySource) Notifications() <-chan voter.FinalityNotification { return n.ch }

type nullGossipEngine struct {
	votes chan primitives.VoteMessage
	done  chan struct{}
}

// newNullGossipEngine sizes its vote buffer from cfg.GossipPeerSlots, the
// number of peers a real gossip engine would fan out to concurrently.
func newNullGossipEngine(peerSlots int) *nullGossipEngine {
	if peerSlots < 1 {
		peerSlots = 1
	}
	return &nullGossipEngine{votes: make(chan primitives.VoteMessage, peerSlots), done: make(chan struct{})}
}

func (n *nullGossipEngine) Votes() <-chan primitives.VoteMessage { return n.votes }
func (n *nullGossipEngine) Done() <-chan struct{}                { return n.done }
func (n *nullGossipEngine) Broadcast(primitives.VoteMessage) error {
	return nil
}
