/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-labels/internal/rpc"
	"github.com/toothbrush/confluence-labels/labels"
)

var (
	Listen         string
	RequestTimeout time.Duration
)

var serveUsage = strings.TrimSpace(`
Serve the label procedures over HTTP for a web front end.  Each procedure is a POST to
/procedures/{name} with a JSON body:

  getLabels, getPages      {"context": {"spaceKey": "DEV"}}
  addLabel                 {"labelName": "x", "pageIds": ["123"]}
  deleteLabels             {"labels": ["x"], "context": {...}}
  mergeLabels              {"sourceLabels": ["a"], "targetLabel": "b", "context": {...}}
`)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve label procedures over HTTP",
	Long:  serveUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stopSignals()

		api, stop, err := newAPI()
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		defer stop()

		organizer := newOrganizer(api, labels.Options{
			Workers:         Workers,
			ContinueOnError: KeepGoing,
		})
		server := rpc.NewServer(organizer, logger.Named("rpc"), RequestTimeout)

		httpServer := &http.Server{
			Addr:              Listen,
			Handler:           server.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errs := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", Listen, "procedures", server.Names())
			errs <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errs:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("serve: shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&Listen, "listen", "127.0.0.1:8080", "address to serve on")
	serveCmd.Flags().DurationVar(&RequestTimeout, "request-timeout", rpc.DefaultTimeout, "longest a single procedure may run (negative for no limit)")
	serveCmd.Flags().IntVar(&Workers, "workers", 1, "how many pages to relabel at once")
	serveCmd.Flags().BoolVar(&KeepGoing, "keep-going", false, "carry on past failed label calls and report them all at the end")
}
