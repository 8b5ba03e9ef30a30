// skudash 品牌方 SKU 看板的命令行客户端
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"sku_dash_v1/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &runner{out: os.Stdout, in: os.Stdin}
	if err := r.app().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runner 持有一次命令执行期间的依赖
type runner struct {
	out  *os.File
	in   *os.File
	deps *Dependencies
}

func (r *runner) app() *cli.App {
	return &cli.App{
		Name:  "skudash",
		Usage: "browse SKU performance and keep notes per SKU",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a config file (yaml/json/toml)",
				EnvVars: []string{config.EnvPrefix + "_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "override api.base_url",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log HTTP traffic",
			},
		},
		Before:   r.before,
		After:    r.after,
		Commands: r.commands(),
	}
}

// before 1. 读配置 2. 组装依赖 3. 恢复会话
func (r *runner) before(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if u := c.String("base-url"); u != "" {
		cfg.API.BaseURL = u
	}
	if c.Bool("debug") {
		cfg.API.Debug = true
		cfg.Log.Level = "debug"
	}

	deps, err := initDependencies(cfg, newNavigator(r.out))
	if err != nil {
		return err
	}
	r.deps = deps
	deps.start(c.Context)
	return nil
}

func (r *runner) after(*cli.Context) error {
	if r.deps != nil {
		r.deps.Close()
	}
	return nil
}
