package main

import (
	"flag"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/rs/zerolog/log"

	"github.com/vtarasov/url-shortener/internal/app"
	"github.com/vtarasov/url-shortener/internal/config"
	"github.com/vtarasov/url-shortener/internal/logger"
)

var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

func writeHeapProfile(path string) {
	f, err := os.Create(path)
	if err == nil {
		runtime.GC()
		pprof.WriteHeapProfile(f)
		_ = f.Close()
	}
}

func main() {
	logger.InitLogger()

	cfg := config.NewConfig()

	if cfg.MaxProcs > 0 {
		runtime.GOMAXPROCS(cfg.MaxProcs)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating application")
	}

	if err := application.Run(); err != nil {
		if *memprofile != "" {
			writeHeapProfile(*memprofile)
		}
		log.Fatal().Err(err).Msg("Error running application")
	}

	if *memprofile != "" {
		writeHeapProfile(*memprofile)
	}
}
