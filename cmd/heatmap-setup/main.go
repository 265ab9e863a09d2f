package main

import (
	"flag"
	"log"
	"os"

	"gaze-heatmap/internal/assets"
	"gaze-heatmap/pkg/render"
)

func main() {
	dir := flag.String("dir", ".", "output directory for the lookup texture and material")
	width := flag.Int("ramp", render.DefaultRampWidth, "lookup table width")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0755); err != nil {
		log.Fatalf("failed to create %s: %v", *dir, err)
	}
	if err := assets.Setup(*dir, render.BuildRamp(*width), assets.DefaultShaders()); err != nil {
		log.Fatal(err)
	}
}
