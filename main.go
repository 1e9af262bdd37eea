package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/gleamweb/gleamweb/app"
)

var (
	debug   bool
	version bool
	config  string
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.BoolVarP(&version, "version", "v", false, "display version information")
	flag.BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	flag.StringVarP(&config, "config", "c", "config.json", "path to configuration file")
}

func main() {
	flag.Parse()

	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	if version {
		fmt.Printf("gleamweb version %s\n", FullVersion())
		os.Exit(0)
	}

	cfg := app.DefaultConfig()
	err := cfg.ReadFile(config)
	if err != nil && !os.IsNotExist(err) {
		log.Fatal(err)
	}

	store, err := app.NewSQLiteStore(cfg.Server.StorePath)
	if err != nil {
		log.Fatal(err)
	}

	a, err := app.NewApp(store, cfg)
	if err != nil {
		store.Close()
		log.Fatal(err)
	}
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Local server: http://%s", addr)

	go func() {
		if err := a.Run(); err != nil {
			log.Fatal(err)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil {
		log.Error(err)
	}
	if err := store.Close(); err != nil {
		log.Error(err)
	}
}
