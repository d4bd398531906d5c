// Package main is the entry point for the Scenebridge server.
//
// Scenebridge embeds a headless editor host (a scene tree driven by a
// frame scheduler and scripted with Lua) and exposes it to remote
// clients over MCP (stdio or HTTP) or a plain TCP line protocol.
// Clients submit script fragments that are rewritten, wrapped into a
// guarded execution unit and attached to a transient scene node; the
// captured output, error and result value travel back as a structured
// response.
//
// The application uses Uber's fx framework for dependency injection and
// lifecycle management, with zap for structured logging and viper for
// configuration.
package main

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/mirelab/scenebridge/config"
	"github.com/mirelab/scenebridge/host"
	"github.com/mirelab/scenebridge/logger"
	"github.com/mirelab/scenebridge/mcpserver"
	"github.com/mirelab/scenebridge/tcpserver"
)

func main() {
	app := fx.New(
		// Provide dependencies
		fx.Provide(
			// Config
			config.New,

			// Logger with configuration
			logger.NewFromConfig,

			// Embedded editor host
			host.New,
		),

		// Drive the host's frame loop for the lifetime of the app
		fx.Invoke(
			func(lc fx.Lifecycle, h *host.Host) {
				ctx, cancel := context.WithCancel(context.Background())
				lc.Append(fx.Hook{
					OnStart: func(context.Context) error {
						go h.Run(ctx)
						return nil
					},
					OnStop: func(context.Context) error {
						cancel()
						return nil
					},
				})
			},
		),

		// Start the appropriate transport based on config
		fx.Invoke(
			func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, h *host.Host) error {
				switch cfg.Server.Transport {
				case "stdio", "http":
					server, err := mcpserver.New(cfg, log, h)
					if err != nil {
						return err
					}
					go func() {
						var serveErr error
						if cfg.Server.Transport == "stdio" {
							serveErr = server.ServeStdio()
						} else {
							serveErr = server.ServeHTTP()
						}
						if serveErr != nil {
							panic(serveErr)
						}
					}()
				case "tcp":
					server := tcpserver.New(cfg, log, h)
					ctx, cancel := context.WithCancel(context.Background())
					lc.Append(fx.Hook{
						OnStart: func(context.Context) error {
							return server.Start(ctx)
						},
						OnStop: func(context.Context) error {
							cancel()
							return server.Close()
						},
					})
				default:
					panic("unsupported transport: " + cfg.Server.Transport)
				}
				return nil
			},
		),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Start the application
	app.Run()
}
