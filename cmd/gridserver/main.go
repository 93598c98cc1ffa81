// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// gridserver serves the convolution and pooling pipeline over HTTP.
//
// Example:
//
//	gridserver -addr :5000 -v=1
//	curl -X POST localhost:5000/process_matrix -d '{"matrix": [[1,2],[3,4]], "kernel": [[1]]}'
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gridops/pkg/pipeline"
	"github.com/gomlx/gridops/pkg/server"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagAddr       = flag.String("addr", ":5000", "HTTP server address.")
	flagMaxBody    = flag.Int64("max_body", server.DefaultOptions().MaxBodyBytes, "Maximum size in bytes of a request body.")
	flagMaxRows    = flag.Int("max_rows", pipeline.DefaultLimits.MaxRows, "Maximum number of rows of the input matrix. 0 for unlimited.")
	flagMaxCols    = flag.Int("max_cols", pipeline.DefaultLimits.MaxCols, "Maximum number of columns of the input matrix. 0 for unlimited.")
	flagMaxKernel  = flag.Int("max_kernel", pipeline.DefaultLimits.MaxKernel, "Maximum number of rows and columns of the kernel. 0 for unlimited.")
	flagMaxPadding = flag.Int("max_padding", pipeline.DefaultLimits.MaxPadding, "Maximum convolution padding. 0 for unlimited.")
	flagShutdown   = flag.Duration("shutdown_timeout", 10*time.Second, "Time given to in-flight requests to finish on shutdown.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagMaxBody <= 0 {
		klog.Exitf("-max_body must be > 0, got %d", *flagMaxBody)
	}

	opts := server.DefaultOptions()
	opts.MaxBodyBytes = *flagMaxBody
	opts.Limits = pipeline.Limits{
		MaxRows:    *flagMaxRows,
		MaxCols:    *flagMaxCols,
		MaxKernel:  *flagMaxKernel,
		MaxPadding: *flagMaxPadding,
	}
	httpServer := &http.Server{
		Addr:              *flagAddr,
		Handler:           server.New(opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		klog.Infof("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), *flagShutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			klog.Errorf("Shutdown: %+v", err)
		}
	}()

	klog.Infof("Serving on %s (max body %s, limits %+v)", *flagAddr, humanize.IBytes(uint64(opts.MaxBodyBytes)), opts.Limits)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		klog.Fatalf("Failed to serve: %+v", err)
	}
	<-shutdownDone
	klog.Infof("Server stopped")
}
