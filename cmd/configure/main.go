// Package main starts the workflow configuration builder.
//
// This process serves the browser form that edits a workflow configuration
// and exports the pipeline artifact files.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	configurecmd "github.com/CirroBioApps/cirro-configure-workflow/internal/cmd/configure"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/platform/config"
)

func main() {
	cfg, err := configurecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[CONFIGURE] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := configurecmd.Run(ctx, cfg); err != nil {
		config.Exitf("failed to serve: %v", err)
	}
}
