// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/appinsight/insightviz/internal/metrics"
	"github.com/appinsight/insightviz/internal/tool"
)

func newServeCmd(a *app) *cobra.Command {
	var httpAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the insightviz MCP server over stdio or streamable HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("http") {
				a.cfg.Server.HTTPAddr = httpAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "listen address for streamable HTTP (default: stdio)")
	return cmd
}

func (a *app) newServer(recorder *metrics.Recorder) (*mcp.Server, error) {
	svc, err := tool.NewService(tool.ServiceOptions{
		DefaultConvention: a.cfg.Convention,
		VerifyOutput:      a.cfg.VerifyOutput,
		Logger:            a.logger,
		Observer:          recorder,
	})
	if err != nil {
		return nil, err
	}
	server := mcp.NewServer(&mcp.Implementation{Name: "insightviz", Version: version}, nil)
	svc.Register(server)
	return server, nil
}

func (a *app) serve(ctx context.Context) error {
	recorder := metrics.NewRecorder()
	server, err := a.newServer(recorder)
	if err != nil {
		return err
	}

	if a.cfg.Server.HTTPAddr == "" {
		a.logger.Info("serving MCP over stdio", zap.String("convention", a.cfg.Convention))
		return server.Run(ctx, &mcp.StdioTransport{})
	}

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil))
	mux.Handle("/metrics", recorder.Handler())

	srv := &http.Server{
		Addr:              a.cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("serving MCP over HTTP", zap.String("addr", srv.Addr), zap.String("convention", a.cfg.Convention))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
