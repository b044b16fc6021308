// Command mallard runs the ingestion HTTP server: it wires config,
// storage, the ingestion pipeline, and the stats API together and serves
// them until a shutdown signal is received (spec §4.13, §6).
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/mallardmetrics/mallard/internal/behavioral"
	"github.com/mallardmetrics/mallard/internal/buffer"
	"github.com/mallardmetrics/mallard/internal/cache"
	"github.com/mallardmetrics/mallard/internal/config"
	"github.com/mallardmetrics/mallard/internal/engine"
	"github.com/mallardmetrics/mallard/internal/flush"
	"github.com/mallardmetrics/mallard/internal/geoip"
	"github.com/mallardmetrics/mallard/internal/httpapi"
	"github.com/mallardmetrics/mallard/internal/ingest"
	"github.com/mallardmetrics/mallard/internal/logger"
	"github.com/mallardmetrics/mallard/internal/must"
	"github.com/mallardmetrics/mallard/internal/querycore"
	"github.com/mallardmetrics/mallard/internal/ratelimit"
	"github.com/mallardmetrics/mallard/internal/reaper"
	"github.com/mallardmetrics/mallard/internal/storage"
	"github.com/mallardmetrics/mallard/internal/visitorid"
	"github.com/mallardmetrics/mallard/internal/workerpool"
)

func main() {
	o := config.Defaults()
	cmd := &cli.Command{
		Name:  "mallard",
		Usage: "self-hosted web analytics ingestion and query service",
		Flags: config.Flags(o),
		Action: func(cCtx *cli.Context) error {
			config.Finalize(cCtx, o)
			return run(cCtx.Context, o)
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Get().Fatal().Err(err).Msg("mallard: fatal error")
	}
}

// run builds every collaborator, starts the background loops, and blocks
// serving HTTP until a shutdown signal arrives.
func run(ctx context.Context, o *config.Options) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	addr := fmt.Sprintf("%s:%d", o.Host, o.Port)
	listener := must.Must(net.Listen("tcp", addr))("failed to bind %s", addr)

	ctx, eng := engine.Open(ctx, o.DataDir, o.BehavioralEnabled)

	queryCache := must.Must(cache.New(time.Duration(o.CacheTTLSecs) * time.Second))("failed to build query cache")

	buf := buffer.New()
	writer := storage.New(buf, eng.DB, o.DataDir, queryCache)
	pool := workerpool.New(ctx, 4)
	supervisor := flush.New(writer, time.Duration(o.FlushIntervalSecs)*time.Second, pool)

	limiter := ratelimit.New(o.RateLimitPerSite, o.RateLimitPerSite)
	visitors := visitorid.New(o.Secret)
	geo := geoip.Open(o.GeoIPPath)
	orchestrator := ingest.New(o, limiter, visitors, geo, buf, supervisor)

	queryRunner := querycore.New(eng, queryCache)
	behavioralRunner := behavioral.New(eng, o.BehavioralEnabled)

	api := httpapi.New(orchestrator, queryRunner, behavioralRunner, nil)
	httpSrv := &http.Server{
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sweep := reaper.New(o.DataDir, o.RetentionDays)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Get().Info().Str("addr", listener.Addr().String()).Msg("mallard: serving HTTP")
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		supervisor.Run(gctx, time.Duration(o.ShutdownTimeoutSecs)*time.Second)
		return nil
	})
	g.Go(func() error {
		sweep.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(o.ShutdownTimeoutSecs)*time.Second)
		defer cancel()
		logger.Get().Info().Msg("mallard: shutting down")
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Get().Warn().Err(err).Msg("mallard: http server did not shut down cleanly within the timeout")
		}
		return nil
	})

	return g.Wait()
}
