// Command birdtwind runs the digital twin daemon: it opens the configured
// persistence and archive backends, serves Prometheus metrics, and sweeps
// twin lifecycles on a fixed interval.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"birdtwin/internal/blob"
	"birdtwin/internal/config"
	"birdtwin/internal/core"
	"birdtwin/internal/metrics"
)

func main() {
	listenAddr := flag.String("listen", ":9110", "metrics listen address")
	sweepEvery := flag.Duration("sweep-interval", time.Hour, "lifecycle sweep interval")
	archiveEvery := flag.Duration("archive-interval", 24*time.Hour, "owner archive export interval")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cal, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load calibration")
	}

	engine := core.NewDefaultRulesEngine()
	store, err := core.OpenPersistentStore(cal.Storage, engine)
	if err != nil {
		log.WithError(err).Fatal("open persistent store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("close store")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	archive, err := blob.Open(ctx, cal.Blob)
	if err != nil {
		log.WithError(err).Fatal("open archive store")
	}
	log.WithField("driver", archive.Driver()).Info("archive store ready")

	service := core.NewService(store, cal,
		core.WithLogger(log),
		core.WithMetrics(metrics.New()),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := &http.Server{Addr: *listenAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.WithField("addr", *listenAddr).Info("metrics listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("metrics server")
		}
	}()

	ticker := time.NewTicker(*sweepEvery)
	defer ticker.Stop()
	archiveTicker := time.NewTicker(*archiveEvery)
	defer archiveTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Warn("metrics shutdown")
			}
			log.Info("shutting down")
			return
		case <-ticker.C:
			swept, err := service.SweepAll(ctx)
			if err != nil {
				log.WithError(err).Error("lifecycle sweep failed")
				continue
			}
			log.WithField("twins", swept).Info("lifecycle sweep complete")
		case <-archiveTicker.C:
			exported, err := service.ArchiveAllOwners(ctx, archive)
			if err != nil {
				log.WithError(err).Error("owner archive export failed")
				continue
			}
			log.WithField("owners", exported).Info("owner archives exported")
		}
	}
}
