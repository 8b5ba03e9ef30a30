// mockapi 本地联调用的 SKU 服务，内存存储，重启即清空
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"sku_dash_v1/internal/testserver"
	"sku_dash_v1/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "mockapi",
		Usage: "serve an in-memory SKU API for local development",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8000", EnvVars: []string{"MOCKAPI_ADDR"}},
			&cli.StringFlag{Name: "secret", Usage: "JWT signing key", EnvVars: []string{"MOCKAPI_JWT_SECRET"}},
			&cli.DurationFlag{Name: "token-ttl", Value: 2 * time.Hour},
			&cli.DurationFlag{Name: "login-cooldown", Usage: "reject logins for a username after a failed attempt"},
			&cli.BoolFlag{Name: "seed", Value: true, Usage: "preload demo accounts and SKUs"},
			&cli.StringFlag{Name: "log-level", Value: "info"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	// 1. 日志
	log, err := logger.New(logger.Options{Level: c.String("log-level")})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// 2. 服务
	jwtCfg := testserver.DefaultJWTConfig()
	if s := c.String("secret"); s != "" {
		jwtCfg.SecretKey = s
	}
	jwtCfg.AccessTokenTTL = c.Duration("token-ttl")

	gin.SetMode(gin.ReleaseMode)
	api := testserver.New(testserver.Options{
		JWT:           jwtCfg,
		Logger:        log,
		Seed:          c.Bool("seed"),
		LoginCooldown: c.Duration("login-cooldown"),
	})
	if c.Bool("seed") {
		log.Info("demo accounts ready",
			zap.Strings("usernames", []string{"brand_demo", "ops_demo"}),
			zap.String("password", testserver.DemoPassword))
	}

	return startServer(c.String("addr"), api.Handler(), log)
}

// startServer 启动服务，收到退出信号后优雅关闭
func startServer(addr string, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 异步启动服务
	errCh := make(chan error, 1)
	go func() {
		log.Info("mock api listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-quit:
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}
