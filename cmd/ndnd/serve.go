package main

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acardace/ndnd/ndn"
)

func newServeCommand() *cobra.Command {
	var port uint16
	var mode string
	var listenAddr string
	var peers []string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the forwarder/producer daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			cfg, err := ndn.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("mode") {
				cfg.Mode = mode
			}
			if cmd.Flags().Changed("listen-addr") {
				cfg.ListenAddr = listenAddr
			}
			if cmd.Flags().Changed("peer") {
				cfg.Peers = peers
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			router, err := ndn.Begin(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("starting daemon: %w", err)
			}
			defer router.Stop() //nolint:errcheck

			if cfg.Mode == "static-peers" {
				addrs, err := parsePeers(cfg.Peers)
				if err != nil {
					return err
				}
				if err := router.AddPeers(addrs); err != nil {
					return fmt.Errorf("registering peers: %w", err)
				}
			}

			if metricsAddr != "" {
				go serveMetrics(metricsAddr, logger)
			}

			return router.Run(ctx)
		},
	}

	cmd.Flags().Uint16Var(&port, "port", ndn.DefaultConfig().Port, "UDP port to listen and send on")
	cmd.Flags().StringVar(&mode, "mode", "broadcast", "fan-out mode: broadcast or static-peers")
	cmd.Flags().StringVar(&listenAddr, "listen-addr", "", "this node's own IPv4 address (auto-detected if empty); the socket listens on all interfaces")
	cmd.Flags().StringSliceVar(&peers, "peer", nil, "static peer IPv4 address (repeatable, static-peers mode only)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (disabled if empty)")

	return cmd
}

func parsePeers(raw []string) ([]netip.Addr, error) {
	out := make([]netip.Addr, 0, len(raw))
	for _, p := range raw {
		addr, err := netip.ParseAddr(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid peer address %q: %w", p, err)
		}
		out = append(out, addr)
	}
	return out, nil
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server exited", zap.Error(err))
	}
}
