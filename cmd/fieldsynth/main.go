package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldsynth/fieldsynth"
	"github.com/fieldsynth/fieldsynth/oto"
	"github.com/fieldsynth/fieldsynth/player"
	"github.com/fieldsynth/fieldsynth/version"
)

var configFile = flag.String("config", "", "read the configuration from `file` instead of the user config directory")
var engine = flag.String("engine", "", "start with `engine`: poly, fm, mono or string")
var versionFlag = flag.Bool("v", false, "print version and exit")

const redrawInterval = 30 * time.Millisecond

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	config, err := fieldsynth.LoadConfig(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if *engine != "" {
		config.Engine = *engine
		if err := config.Validate(); err != nil {
			log.Fatal(err)
		}
	}
	keyMap, err := loadKeyMap()
	if err != nil {
		log.Fatal(err)
	}
	audioContext, err := oto.NewContext(config.SampleRate, config.BlockSize)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	broker := player.NewBroker()
	model, err := player.NewModel(broker, config)
	if err != nil {
		log.Fatal(err)
	}
	if err := model.Initialize(audioContext); err != nil {
		log.Fatal(err)
	}
	defer model.Shutdown()
	term, err := openTerminal(os.Stdin, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
	defer term.Close()
	log.SetOutput(crlfWriter{os.Stderr})
	keys := make(chan byte, 64)
	go readKeys(os.Stdin, keys)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	run(newSession(model, keyMap), term, config.SampleRate, keys, signals)
}

// run is the UI loop. It owns the model: key presses and redraws are both
// handled on this goroutine.
func run(s *session, t *terminal, sampleRate int, keys <-chan byte, signals <-chan os.Signal) {
	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()
	for {
		select {
		case b, ok := <-keys:
			if !ok || !s.handleKey(b, time.Now()) {
				s.model.StopEverything()
				return
			}
		case <-signals:
			s.model.StopEverything()
			return
		case now := <-ticker.C:
			s.expire(now)
			t.drawStatus(s.statusLine(sampleRate))
		}
	}
}

func printUsage() {
	fmt.Fprintf(flag.CommandLine.Output(), "fieldsynth %s: a four engine synthesizer with a four track tape looper\n\nUsage: %s [flags]\n\nFlags:\n", version.VersionOrHash, os.Args[0])
	flag.PrintDefaults()
}
