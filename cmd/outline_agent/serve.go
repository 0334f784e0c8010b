package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/outline-ranker/internal/extraction"
	"github.com/jonathan/outline-ranker/internal/server"
)

var (
	serveAddr string
	serveDB   string
	serveRoot string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that exposes outline extraction, collection analysis, and section search.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "SQLite section index (overrides store.path)")
	serveCmd.Flags().StringVar(&serveRoot, "collections", "", "Directory /v1/analyze may read collections from (overrides server.collections_root)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	p, err := rt.newPipeline()
	if err != nil {
		return err
	}

	db, err := rt.openStore(serveDB)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	cfg := rt.cfg.ServerOptions()
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if serveRoot != "" {
		cfg.CollectionsRoot = serveRoot
	}

	srv := server.New(cfg, p, extraction.NewPDFSupplier(), db, rt.logger)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
