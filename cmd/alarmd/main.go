package main

import (
	"context"
	"flag"
	"log"
	"sync"

	"github.com/fixkme/tickdriver/clock"
	"github.com/fixkme/tickdriver/driver"
	"github.com/fixkme/tickdriver/framework/app"
	"github.com/fixkme/tickdriver/framework/config"
	"github.com/fixkme/tickdriver/mlog"
	"github.com/fixkme/tickdriver/server"
	"github.com/panjf2000/gnet/v2"
)

func main() {
	configFile := flag.String("config", "", "config file (json)")
	addr := flag.String("addr", "", "listen address, overrides config")
	flag.Parse()

	err := config.LoadConfig(*configFile, func(c *config.AppConfig) error {
		if *addr != "" {
			c.ListenAddr = *addr
		}
		return nil
	})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	conf := config.Config

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	if err = conf.SetupLogger(ctx, wg); err != nil {
		log.Fatalf("setup logger: %v", err)
	}
	mlog.Debugf("config: %s", conf.JsonFormat())

	drv := driver.Default()
	srv := server.NewServer(drv, &server.Options{
		Options:  gnet.Options{Multicore: conf.Multicore},
		Addr:     conf.ListenAddr,
		MaxFrame: conf.MaxFrame,
	})
	err = app.DefaultApp().Run(
		driver.NewModule("timer-driver", drv, clock.NewSystem()),
		server.NewModule("alarmd", srv),
	)
	if err != nil {
		mlog.Errorf("alarmd start: %v", err)
	}
	cancel()
	wg.Wait()
}
