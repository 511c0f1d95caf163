package main

import (
	"context"
	"os"
	"time"

	"github.com/slidecast/slidecast/pkg/api"
	"github.com/slidecast/slidecast/pkg/capture"
	"github.com/slidecast/slidecast/pkg/config"
	"github.com/slidecast/slidecast/pkg/encoder"
	"github.com/slidecast/slidecast/pkg/encoder/codecs"
	"github.com/slidecast/slidecast/pkg/logger"
	"github.com/slidecast/slidecast/pkg/monitoring"
	"github.com/slidecast/slidecast/pkg/notify"
	xos "github.com/slidecast/slidecast/pkg/os"
	"github.com/slidecast/slidecast/pkg/playback"
	"github.com/slidecast/slidecast/pkg/session"
	"github.com/slidecast/slidecast/pkg/store"
)

var Version = "1.0"

func main() {
	conf, err := config.NewConfig(os.Getenv("SLIDECAST_CONF"))
	if err != nil {
		logger.Default().Fatal().Err(err).Msg("config load failed")
	}
	conf.ParseFlags()

	log := logger.NewConsole(conf.Debug, "slidecast")
	log.Info().Msgf("version: %v", Version)
	log.Debug().Msgf("config: %+v", conf)

	hub := notify.NewHub(log)
	notifier := notify.Multi{notify.Log{L: log}, hub}

	factory := func(wantAudio bool, rate, ch int) (session.Stream, error) {
		sel, err := encoder.Probe(log, codecs.Preference(conf), codecs.Audio(conf, rate, ch), wantAudio)
		if err != nil {
			return nil, err
		}
		return encoder.NewStream(sel, conf.Recording.Video.Width, conf.Recording.Video.Height, rate, ch, log)
	}

	var pb playback.Playback
	if conf.Playback.Enabled {
		pb = playback.NewTimed(conf.Playback.Slides, time.Duration(conf.Playback.SlideMs)*time.Millisecond, log)
	}

	engine := session.NewEngine(
		capture.SyntheticProvider{Fps: conf.Recording.Video.Fps},
		factory,
		store.New(conf.Storage, log),
		notifier,
		pb,
		conf.Recording.Dir,
		log,
	)

	srv, err := api.New(conf, engine, hub, log)
	if err != nil {
		log.Fatal().Err(err).Msg("api server failed to start")
	}
	srv.Run()
	log.Info().Msgf("api at %v", srv.Addr())

	var mon *monitoring.Monitoring
	if conf.Monitoring.IsEnabled() {
		if mon, err = monitoring.New(conf.Monitoring, log); err != nil {
			log.Error().Err(err).Msg("monitoring failed to start")
		} else {
			mon.Run()
		}
	}

	<-xos.ExpectTermination()

	if _, err := engine.Stop(); err != nil && err != session.ErrNotRecording && err != session.ErrNoData {
		log.Error().Err(err).Msg("shutdown stop failed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if mon != nil {
		_ = mon.Shutdown(ctx)
	}
	_ = srv.Shutdown(ctx)
	hub.Close()
	log.Info().Msg("bye")
}
