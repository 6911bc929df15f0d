package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vent_bridge/internal/bus"
	"vent_bridge/internal/handlers"
	"vent_bridge/internal/logger"
	"vent_bridge/internal/repository"
	"vent_bridge/internal/server"
	"vent_bridge/internal/service"

	"github.com/spf13/viper"
)

func main() {
	// load config.yml first so the log level comes from it
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log_level"))

	// open the field bus; a failed connect drops to disconnected/demo
	// mode rather than refusing to serve
	transport := openBus(log)
	defer func() {
		if cerr := transport.Close(); cerr != nil {
			log.Errorw("failed to close bus", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository()
	services := service.NewService(repos, transport, viper.GetDuration("bus.poll_spacing"), log)
	apiHandler := handlers.NewHandler(services, log)

	// context for background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// single worker per orchestrator keeps batch order equal to
	// submission order; the bus client serializes the transactions
	go services.BulkCommands.Run(ctx)
	go services.BulkStatus.Run(ctx)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	viper.SetDefault("bus.mode", bus.ModeRTU)
	viper.SetDefault("bus.baud_rate", 9600)
	viper.SetDefault("bus.data_bits", 8)
	viper.SetDefault("bus.parity", "E")
	viper.SetDefault("bus.stop_bits", 1)
	viper.SetDefault("bus.timeout", time.Second)
	viper.SetDefault("bus.poll_spacing", 100*time.Millisecond)
	return viper.ReadInConfig()
}

// openBus connects to the configured field bus. On connect failure the
// bridge keeps running against a disconnected transport: commands fail
// with a notice and status reads return fixed demo values.
func openBus(log *logger.Logger) bus.Transport {
	cfg := bus.Config{
		Mode:     viper.GetString("bus.mode"),
		Device:   viper.GetString("bus.device"),
		BaudRate: viper.GetInt("bus.baud_rate"),
		DataBits: viper.GetInt("bus.data_bits"),
		Parity:   viper.GetString("bus.parity"),
		StopBits: viper.GetInt("bus.stop_bits"),
		Endpoint: viper.GetString("bus.endpoint"),
		Timeout:  viper.GetDuration("bus.timeout"),
	}
	client, err := bus.Open(cfg)
	if err != nil {
		log.Warnw("bus connect failed; running disconnected", "err", err, "mode", cfg.Mode)
		return bus.NewDisconnected()
	}
	log.Infow("bus connected", "mode", cfg.Mode, "device", cfg.Device, "endpoint", cfg.Endpoint)
	return client
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background workers
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
