package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/config"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/engine"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/interfaces"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/logger"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/network"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/server"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/source/ibgw"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/state"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.Name)

	// 2. Database mirror
	var db interfaces.IDatabase

	switch config.Storage.DBType {
	case "postgres":
		db, err = storage.NewPostgresDB(config.MConfig, appLogger)
	default:
		// Default to SQLite
		db, err = storage.NewAsyncSQLiteDB(config.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}
	defer db.Close()

	// 3. CSV sinks (headers written on first run)
	sink, err := storage.NewCSVSink(config.MConfig, appLogger)
	if err != nil {
		appLogger.Critical("Failed to open csv sinks: %v", err)
	}
	defer sink.Close()

	// 4. Gateway source behind the retrying HTTP client
	netManager := network.NewManager(config.MConfig, appLogger)
	var source interfaces.IQuoteSource = ibgw.NewGatewaySource(config.MConfig, netManager)

	// 5. Shared state store and server
	store := state.NewStore(config.Engine.RingCapacity)
	var srv interfaces.IDataExchanger = server.NewDashboardServer(config.MConfig, appLogger, store)

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 6. Aggregation engine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.NewEngine(config, source, sink, db, store, srv)

	done := make(chan error, 1)
	go func() {
		done <- eng.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	appLogger.Info("%s running, press Ctrl+C to stop", config.Name)

	select {
	case <-quit:
		appLogger.Info("Shutting down...")
		cancel()
		<-done
	case err := <-done:
		if err != nil {
			appLogger.Error("Engine stopped: %v", err)
		}
	}

	srv.Stop()
}
