// blinky 用驱动定时翻转一个虚拟LED
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fixkme/tickdriver/clock"
	"github.com/fixkme/tickdriver/driver"
	"github.com/fixkme/tickdriver/framework/config"
	"github.com/fixkme/tickdriver/mlog"
	"github.com/fixkme/tickdriver/tick"
	"github.com/fixkme/tickdriver/timer"
)

type led struct {
	on      bool
	toggles int
}

func (l *led) toggle(now tick.Tick) {
	l.on = !l.on
	l.toggles++
	state := "off"
	if l.on {
		state = "on"
	}
	mlog.Infof("led %s at tick %d (%v)", state, now, now.Duration())
}

func main() {
	configFile := flag.String("config", "", "config file (json)")
	period := flag.Duration("period", 0, "blink period, overrides config")
	count := flag.Int("count", -1, "toggles before exit, 0 blinks forever")
	flag.Parse()

	err := config.LoadConfig(*configFile, func(c *config.AppConfig) error {
		if *period > 0 {
			c.BlinkPeriodMs = int(period.Milliseconds())
		}
		if *count >= 0 {
			c.BlinkCount = *count
		}
		return nil
	})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	conf := config.Config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	wg := &sync.WaitGroup{}
	if err = conf.SetupLogger(ctx, wg); err != nil {
		log.Fatalf("setup logger: %v", err)
	}

	driver.MustInit(clock.NewSystem(), driver.GoSpawner)
	defer driver.Default().Stop()

	l := &led{}
	ticker := timer.NewTicker(driver.Default(), tick.FromDuration(time.Duration(conf.BlinkPeriodMs)*time.Millisecond))
	for conf.BlinkCount == 0 || l.toggles < conf.BlinkCount {
		at, err := ticker.Next(ctx)
		if err != nil {
			break
		}
		l.toggle(at)
	}
	mlog.Infof("blinky done after %d toggles", l.toggles)
	stop()
	wg.Wait()
}
