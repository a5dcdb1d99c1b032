package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	v1 "leasesync/api/v1"
	"leasesync/internal/auth"
	"leasesync/internal/dns"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the periodic sync worker and the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			log := logrus.NewEntry(a.logger)

			worker := dns.NewWorker(a.runner, dns.WorkerConfig{
				Enabled:     a.cfg.Worker.Enabled,
				IntervalSec: a.cfg.Worker.IntervalSec,
				DryRun:      dryRun,
			}, log)
			worker.Start()
			defer worker.Stop()

			return serveHTTP(ctx, a, log)
		},
	}

	c.Flags().BoolVar(&dryRun, "dry-run", false, "worker passes only plan, never write")
	return c
}

func serveHTTP(ctx context.Context, a *app, log *logrus.Entry) error {
	issuer := auth.NewIssuer(a.cfg.JWT.Secret, a.cfg.JWT.Issuer, time.Duration(a.cfg.JWT.ExpireMinutes)*time.Minute)
	if !issuer.Enabled() {
		log.Warn("JWT_SECRET not set, protected API routes will reject every request")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	deps := v1.Deps{
		Runner:    a.runner,
		Issuer:    issuer,
		AdminHash: a.cfg.AdminHash,
	}
	if a.history != nil {
		deps.History = a.history
	}
	v1.SetupRouter(r, deps)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Server starting on %s", a.cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
