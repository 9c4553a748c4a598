package main

import (
	"context"
	"flag"
	"log/slog"

	"tcgsearch/internal/config"
	"tcgsearch/internal/telemetry"
	"tcgsearch/lib/cardproxy"
	"tcgsearch/lib/cardsearch"
	"tcgsearch/lib/serviceutil"
)

func main() {
	configPath := flag.String("config", "", "Path to the config file, defaults to the nearest tcgsearch.json5.")
	verbose := flag.Bool("verbose", false, "Enable debug logging.")
	flag.Parse()

	telemetry.InitSlog(*verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to load config", err)
	}

	ctx, cancel := serviceutil.SignalContext()
	defer cancel()

	tel, err := telemetry.SetupFromEnv(ctx, "tcgproxy")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	defer tel.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	client, err := cardsearch.NewClient(cfg.ClientOptions(), telemetry.SlogAPI{})
	if err != nil {
		serviceutil.Fatal("failed to create card search client", err)
	}

	slog.Info("proxying card searches", "upstream", cfg.BaseUrl, "strict", cfg.StrictDecoding)
	err = serviceutil.StartHttpServer(ctx, cfg.Proxy.Port, cardproxy.NewHandler(client, telemetry.SlogAPI{}))
	if err != nil {
		serviceutil.Fatal("http server stopped", err)
	}
}
