package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auth "github.com/goliatone/go-auth"
	"github.com/goliatone/go-svaroles/adapter/httpapi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the role graph and job endpoints over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer app.Close()

		svc := app.service
		if err := svc.HealthCheck(ctx); err != nil {
			return err
		}
		svc.Initialize(ctx)

		logger := &loggerAdapter{app.GetLogger("http")}
		serverCfg := app.Config().Server
		handlerCfg := httpapi.Config{
			RoleGraph:         svc.Queries().RoleGraph,
			Submit:            svc.Commands().SubmitRoleJobs,
			Jobs:              svc.Queries().JobList,
			Metrics:           promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}),
			TrustActorHeaders: serverCfg.TrustActorHeaders,
			Logger:            logger,
		}
		if secret := serverCfg.TokenSecret; secret != "" {
			handlerCfg.Tokens = auth.NewTokenService([]byte(secret), 0, serverCfg.TokenIssuer, nil, app.GetLogger("auth"))
		}
		switch {
		case serverCfg.TrustActorHeaders:
			app.GetLogger("http").Warn("actor headers are trusted, run behind an authenticating proxy")
		case handlerCfg.Tokens == nil:
			app.GetLogger("http").Warn("no actor source configured, role and job routes will reject every request")
		}
		handler := httpapi.NewHandler(handlerCfg)

		srv := &http.Server{
			Addr:              app.Config().Server.Addr(),
			Handler:           httpapi.NewRouter(handler),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("http server listening", "addr", srv.Addr)
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	},
}
