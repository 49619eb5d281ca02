package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/coapkit/coapkit/app"
	"github.com/coapkit/coapkit/config"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the UDP and TCP CoAP listeners",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a coapkit config file (YAML/JSON/TOML, viper-loaded)")
	return cmd
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logrus.NewEntry(logrus.StandardLogger())
	if lvl, parseErr := logrus.ParseLevel(cfg.LogLevel); parseErr == nil {
		logrus.SetLevel(lvl)
	}

	a, err := app.New(cfg, prometheus.DefaultRegisterer, log)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Infof("coapd: listening udp=%s tcp=%s", cfg.UDPListenAddr, cfg.TCPListenAddr)
	return a.Serve(ctx)
}
