package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"riptide/internal/backtest"
	"riptide/internal/config"
	"riptide/internal/gateway/binance"
	"riptide/internal/gateway/database"
	"riptide/internal/gateway/sentiment"
	"riptide/internal/logger"
	"riptide/internal/scanner"
	"riptide/internal/store"
	httptransport "riptide/internal/transport/http"
)

func main() {
	cfgPath := flag.String("config", "", "TOML 配置文件路径，缺省使用内置默认值")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Errorf("加载配置失败: %v", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Log.Level)

	source := binance.New(binance.Config{
		APIKey:      cfg.Binance.APIKey,
		APISecret:   cfg.Binance.APISecret,
		HTTPTimeout: time.Duration(cfg.Binance.TimeoutSeconds) * time.Second,
	})
	defer source.Close()

	signals, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Errorf("打开信号库失败: %v", err)
		os.Exit(1)
	}
	defer signals.Close()

	klines := store.NewMemoryKlineStore()
	fearGreed := sentiment.NewProvider()
	sc := scanner.New(cfg, source, klines, signals, fearGreed)
	btSvc := backtest.NewService(backtest.ServiceConfig{
		Source:    source,
		Cache:     klines,
		Store:     signals,
		ReportDir: cfg.Database.ReportDir,
		Defaults: backtest.Params{
			Period:     cfg.Engine.ConfluencePeriod,
			Oversold:   cfg.Engine.Oversold,
			Overbought: cfg.Engine.Overbought,
		},
	})

	server, err := httptransport.NewServer(httptransport.Config{
		Addr:     cfg.Server.Addr,
		Scanner:  sc,
		Backtest: btSvc,
		Signals:  signals,
	})
	if err != nil {
		logger.Errorf("初始化 HTTP 服务失败: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sc.Start(ctx)

	logger.Infof("riptide 启动，监听 %s，交易对 %v", cfg.Server.Addr, cfg.Scan.Pairs)
	if err := server.Start(ctx); err != nil {
		logger.Errorf("HTTP 服务异常退出: %v", err)
		os.Exit(1)
	}
	logger.Infof("已退出")
}
