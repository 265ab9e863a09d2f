// Command heatmap-replay repaints a recorded session and exports the result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"gaze-heatmap/internal/config"
	"gaze-heatmap/internal/report"
	"gaze-heatmap/internal/store"
	"gaze-heatmap/pkg/heatmap"
	"gaze-heatmap/pkg/render"
)

type options struct {
	dbPath     string
	sessionID  string
	configPath string
	out        string
	bmp        string
	plot       string
	size       int
	parallel   bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("heatmap-replay", flag.ContinueOnError)
	fs.StringVar(&o.dbPath, "db", "", "SQLite database with recorded sessions")
	fs.StringVar(&o.sessionID, "session", "", "session id; defaults to the newest session")
	fs.StringVar(&o.configPath, "config", "", "JSON settings file for the ramp width")
	fs.StringVar(&o.out, "out", "heatmap.png", "output PNG")
	fs.StringVar(&o.bmp, "bmp", "", "also write a BMP")
	fs.StringVar(&o.plot, "plot", "", "also write a plotted heatmap figure (png, svg, pdf)")
	fs.IntVar(&o.size, "size", 0, "rescale the PNG to size×size pixels")
	fs.BoolVar(&o.parallel, "parallel", false, "sweep quadrants concurrently")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.dbPath == "" {
		return o, errors.New("-db is required")
	}
	return o, nil
}

func run(ctx context.Context, o options) error {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return err
	}

	st, err := store.Open(o.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := pickSession(st, o.sessionID)
	if err != nil {
		return err
	}
	samples, err := st.Samples(sess.ID)
	if err != nil {
		return err
	}
	clears, err := st.Clears(sess.ID)
	if err != nil {
		return err
	}
	if err := sess.Config.Validate(); err != nil {
		return fmt.Errorf("session %s: %w", sess.ID, err)
	}

	ramp := render.BuildRamp(cfg.RampWidth)
	painter := heatmap.NewPainter(heatmap.NewBuffer(sess.Config.Width, sess.Config.Height), ramp, sess.Config)
	painted := 0
	for _, smp := range samples {
		for len(clears) > 0 && clears[0] <= smp.Seq {
			if err := painter.Clear(); err != nil {
				return err
			}
			clears = clears[1:]
		}
		if o.parallel {
			err = painter.PaintAtParallel(ctx, smp.UV)
		} else {
			err = painter.PaintAt(smp.UV)
		}
		if errors.Is(err, heatmap.ErrInvalidUV) {
			log.Printf("skip sample %d: %v", smp.Seq, err)
			continue
		}
		if err != nil {
			return err
		}
		painted++
	}
	if len(clears) > 0 {
		if err := painter.Clear(); err != nil {
			return err
		}
	}
	log.Printf("Replayed %d of %d samples from session %s (%s)", painted, len(samples), sess.ID, sess.Label)

	buf := painter.Buffer()
	snapshot := buf.Snapshot()
	if o.size > 0 {
		err = report.WritePNG(o.out, report.Scale(snapshot, o.size, o.size))
	} else {
		err = report.WritePNG(o.out, snapshot)
	}
	if err != nil {
		return err
	}
	if o.bmp != "" {
		if err := report.WriteBMP(o.bmp, snapshot); err != nil {
			return err
		}
	}
	if o.plot != "" {
		title := fmt.Sprintf("Gaze heatmap %s", sess.Label)
		if err := report.PlotHeatmap(o.plot, buf, ramp, title); err != nil {
			return err
		}
	}
	return nil
}

func pickSession(st *store.Store, id string) (store.Session, error) {
	if id != "" {
		return st.Session(id)
	}
	sessions, err := st.Sessions()
	if err != nil {
		return store.Session{}, err
	}
	if len(sessions) == 0 {
		return store.Session{}, store.ErrSessionNotFound
	}
	return sessions[0], nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
	if err := run(context.Background(), o); err != nil {
		log.Fatal(err)
	}
}
