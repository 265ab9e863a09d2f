package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"gaze-heatmap/internal/config"
	"gaze-heatmap/internal/store"
	"gaze-heatmap/internal/viewer"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON settings file")
	dbPath := flag.String("db", "", "record samples into this SQLite database")
	label := flag.String("label", "", "label of the recorded session")
	follow := flag.Bool("follow", false, "paint whenever the cursor is over the surface")
	snapshots := flag.String("snapshots", ".", "directory for PNG snapshots")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *follow {
		cfg.Follow = true
	}

	opts := viewer.Options{Config: cfg, SnapshotDir: *snapshots}
	if *dbPath != "" {
		st, err := store.Open(*dbPath)
		if err != nil {
			log.Fatal(err)
		}
		defer st.Close()

		name := *label
		if name == "" {
			name = fmt.Sprintf("viewer %s", time.Now().Format(time.RFC3339))
		}
		sess, err := st.CreateSession(name, cfg.Heatmap)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Recording session %s (%s)", sess.ID, sess.Label)
		opts.Recorder = st.Recorder(sess.ID)
	}

	v, err := viewer.New(opts)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(config.ScreenWidth, config.ScreenHeight)
	ebiten.SetWindowTitle("Gaze Heatmap")
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
