package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/oscdrax/audio/play"
	"github.com/oscdrax/audio/render"
	"github.com/oscdrax/audio/script"
	"github.com/oscdrax/audio/session"
)

func scriptCmd(args []string) {
	fs := flag.NewFlagSet("script", flag.ExitOnError)
	out := fs.String("o", "", "Render offline to this WAV file instead of playing.")
	configFile := fs.String("config", "oscdrax.json", "Path to config, created with defaults if not found.")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	path := fs.Arg(0)

	config, err := session.ReadConfig(*configFile)
	if err != nil {
		log.Fatalf("can't read config: %v because: %v", *configFile, err)
	}
	e := newEngine(config)
	if err := session.Apply(session.Default(), e); err != nil {
		log.Fatalf("can't apply state: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("can't create output: %v", err)
		}
		defer f.Close()
		w := render.NewWriter(f, e)
		err = script.RunFile(ctx, path, e, &script.Offline{W: w})
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	c := play.PlayAsync(e, config.Params())
	if c.Failed() {
		os.Exit(1)
	}
	defer play.StopAll()
	if err := script.RunFile(ctx, path, e, script.Realtime{}); err != nil {
		log.Println(err)
	}
}
