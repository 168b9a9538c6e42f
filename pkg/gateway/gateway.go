package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	apiv1 "github.com/drivebay/drivebay/pkg/api/v1"
	"github.com/drivebay/drivebay/pkg/common"
	"github.com/drivebay/drivebay/pkg/device"
	"github.com/drivebay/drivebay/pkg/files"
	"github.com/drivebay/drivebay/pkg/types"
)

type Gateway struct {
	Config         types.AppConfig
	httpServer     *http.Server
	Enumerator     device.Enumerator
	Controller     *device.MountController
	Reporter       *device.StatusReporter
	Resolver       *files.PathResolver
	Catalog        *files.FileCatalog
	Engine         *files.FileOperationsEngine
	ctx            context.Context
	cancelFunc     context.CancelFunc
	baseRouteGroup *echo.Group
}

func NewGateway() (*Gateway, error) {
	configManager, err := common.NewConfigManager[types.AppConfig]()
	if err != nil {
		return nil, err
	}
	config := configManager.GetConfig()
	configureLogging(config)

	ctx, cancel := context.WithCancel(context.Background())

	enumerator := device.NewBlockDeviceEnumerator(config.Device)
	controller := device.NewMountController(config.Device, device.NewShellMounter(), enumerator)
	reporter := device.NewStatusReporter(controller)
	resolver := files.NewPathResolver(controller)

	gateway := &Gateway{
		Config:     config,
		Enumerator: enumerator,
		Controller: controller,
		Reporter:   reporter,
		Resolver:   resolver,
		Catalog:    files.NewFileCatalog(resolver),
		Engine:     files.NewFileOperationsEngine(config.FileService, resolver),
		ctx:        ctx,
		cancelFunc: cancel,
	}

	return gateway, nil
}

func (g *Gateway) initHttp() error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if g.Config.DebugMode {
		pprof.Register(e)
	}

	e.Pre(middleware.RemoveTrailingSlash())

	configureEchoLogger(e, g.Config.GatewayService.HTTP.EnablePrettyLogs)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: g.Config.GatewayService.HTTP.CORS.AllowedOrigins,
		AllowHeaders: g.Config.GatewayService.HTTP.CORS.AllowedHeaders,
		AllowMethods: g.Config.GatewayService.HTTP.CORS.AllowedMethods,
	}))
	e.Use(middleware.Recover())

	// Accept both HTTP/2 and HTTP/1
	g.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%v", g.Config.GatewayService.Host, g.Config.GatewayService.HTTP.Port),
		Handler: h2c.NewHandler(e, &http2.Server{}),
	}

	g.baseRouteGroup = e.Group(apiv1.HttpServerBaseRoute)

	apiv1.NewHealthGroup(g.baseRouteGroup.Group("/health"))
	apiv1.NewDeviceGroup(g.baseRouteGroup.Group("/usb"), g.Enumerator, g.Controller, g.Reporter)
	apiv1.NewFileGroup(g.baseRouteGroup.Group("/usb"), g.Catalog, g.Engine)

	return nil
}

// Gateway entry point
func (g *Gateway) Start() error {
	err := g.initHttp()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize http server")
	}

	go func() {
		lis, err := net.Listen("tcp", g.httpServer.Addr)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to listen")
		}

		if err := g.httpServer.Serve(lis); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start http server")
		}
	}()

	log.Info().Int("port", g.Config.GatewayService.HTTP.Port).Msg("gateway http server running")

	terminationSignal := make(chan os.Signal, 1)
	signal.Notify(terminationSignal, os.Interrupt, syscall.SIGTERM)
	<-terminationSignal
	log.Info().Msg("termination signal received. shutting down...")
	g.shutdown()

	return nil
}

// Shutdown gracefully shuts down the gateway.
// This function is blocking and will only return when the gateway has been shut down.
func (g *Gateway) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), g.Config.GatewayService.ShutdownTimeout)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return g.httpServer.Shutdown(ctx)
	})

	eg.Go(func() error {
		// Leave the drive in a detachable state on exit
		if err := g.Controller.Unmount(ctx); err != nil {
			var notMounted *types.ErrNotMounted
			if !errors.As(err, &notMounted) {
				log.Error().Err(err).Msg("failed to unmount drive during shutdown")
			}
		}
		return nil
	})

	g.cancelFunc()

	if err := eg.Wait(); err != nil {
		log.Fatal().Err(err).Msg("failed to shutdown gateway")
	}
}
