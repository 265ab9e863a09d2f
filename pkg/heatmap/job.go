package heatmap

import (
	"fmt"

	"github.com/golang/geo/r2"

	"gaze-heatmap/pkg/scheduler"
)

// Job steps. One step runs per scheduler tick.
const (
	stepPrepare = iota
	stepSweep0
	stepSweep1
	stepSweep2
	stepSweep3
	stepCommit
)

// JobSteps is the number of ticks a paint job takes.
const JobSteps = stepCommit + 1

// paintJob paints a batch of samples. Each sweep step runs one quadrant for every
// centre, so the batch commits once.
type paintJob struct {
	p       *Painter
	centers []r2.Point
	step    int
}

// Step runs the next stage of the paint.
func (j *paintJob) Step() bool {
	switch j.step {
	case stepPrepare:
		j.p.prepare()
	case stepSweep0, stepSweep1, stepSweep2, stepSweep3:
		q := Quadrants[j.step-stepSweep0]
		for _, c := range j.centers {
			j.p.SweepQuadrant(c, q)
		}
	case stepCommit:
		if err := j.p.buf.Commit(); err != nil {
			j.p.logf("heatmap commit failed: %v", err)
		}
		return true
	}
	j.step++
	return false
}

// Job returns the staggered paint of one sample as a scheduler task.
func (p *Painter) Job(uv r2.Point) (scheduler.Task, error) {
	if err := checkUV(uv); err != nil {
		return nil, err
	}
	return &paintJob{p: p, centers: []r2.Point{p.PixelCenter(uv)}}, nil
}

// Enqueue schedules a staggered paint. Jobs run strictly one after another, so a
// sample never starts sweeping before the previous job has committed. A sample that
// arrives while the last queued job is still waiting joins that job, up to MaxBatch
// samples. When the queue is full the sample is dropped and the error says so.
func (p *Painter) Enqueue(uv r2.Point) error {
	if err := checkUV(uv); err != nil {
		return err
	}
	center := p.PixelCenter(uv)
	if last, ok := p.sched.Last().(*paintJob); ok && last.step == stepPrepare && len(last.centers) < p.cfg.MaxBatch {
		last.centers = append(last.centers, center)
		return nil
	}
	if err := p.sched.Submit(&paintJob{p: p, centers: []r2.Point{center}}); err != nil {
		return fmt.Errorf("drop sample %v: %w", uv, err)
	}
	return nil
}

// Tick advances the queued paint work by one step.
func (p *Painter) Tick() bool {
	return p.sched.Tick()
}

// Flush runs every queued job to completion.
func (p *Painter) Flush() {
	p.sched.Drain()
}

// Pending returns the number of unfinished paint jobs.
func (p *Painter) Pending() int {
	return p.sched.Pending()
}
