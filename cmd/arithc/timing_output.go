package main

import (
	"fmt"
	"io"
	"time"

	"arithc/internal/buildpipeline"
)

// printStageTimings prints one line per recorded stage, in pipeline order.
// Stage durations are summed over files, so they can exceed the wall time.
func printStageTimings(out io.Writer, timings buildpipeline.Timings) error {
	if out == nil {
		return nil
	}
	for _, stage := range buildpipeline.Stages() {
		if !timings.Has(stage) {
			continue
		}
		if _, err := fmt.Fprintf(out, "%-8s %.1f ms\n", stage, toMillis(timings.Duration(stage))); err != nil {
			return err
		}
	}
	return nil
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
