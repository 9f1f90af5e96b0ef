// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"

	"coinlens-api/internal/cli"
	"coinlens-api/internal/config"
	"coinlens-api/internal/handler"
	"coinlens-api/internal/svc"
)

var configFile = flag.String("f", "etc/coinlens.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)

	server := rest.MustNewServer(cfg.RestConf)
	defer server.Stop()

	cli.LogConfigSummary(cfg)

	ctx := svc.MustNewServiceContext(*cfg)
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logx.Must(ctx.Start(runCtx))
	defer ctx.Stop()

	handler.RegisterHandlers(server, ctx)

	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
