// Package stream produces paced response bodies. A Plan describes how many
// chunks to send and how long to pause between them; an Emitter walks the
// plan, writing and flushing each chunk as soon as it is produced.
package stream

import (
	"iter"
	"math"
	"strconv"
	"time"

	"github.com/WhileEndless/go-httpbin/pkg/errors"
)

// Drip defaults
const (
	DefaultDripDuration = time.Second
	DefaultDripBytes    = 10
)

// Plan describes a timed emission
type Plan struct {
	Duration time.Duration
	Units    int
	// Fixed overrides the interval derived from Duration and Units
	Fixed time.Duration
	// Delay precedes the first chunk
	Delay time.Duration
}

// Interval is the pause between consecutive chunks
func (p Plan) Interval() time.Duration {
	if p.Fixed > 0 {
		return p.Fixed
	}
	return p.Duration / time.Duration(max(p.Units, 1))
}

// Chunks yields each chunk index with the wait that precedes it. The
// sequence is lazy and can be ranged over again from the start.
func (p Plan) Chunks() iter.Seq2[int, time.Duration] {
	return func(yield func(int, time.Duration) bool) {
		interval := p.Interval()
		for i := 0; i < p.Units; i++ {
			wait := interval
			if i == 0 {
				wait = p.Delay
			}
			if !yield(i, wait) {
				return
			}
		}
	}
}

// ParseDrip builds a drip plan from query values. Empty values take the
// defaults. duration and delay are seconds; together they may not exceed
// maxDuration.
func ParseDrip(duration, numbytes, delay string, maxDuration time.Duration) (Plan, error) {
	plan := Plan{Duration: DefaultDripDuration, Units: DefaultDripBytes}

	if duration != "" {
		d, err := parseSeconds("duration", duration)
		if err != nil {
			return Plan{}, err
		}
		plan.Duration = d
	}
	if numbytes != "" {
		n, err := strconv.Atoi(numbytes)
		if err != nil {
			return Plan{}, errors.InvalidParameter("numbytes", numbytes, err)
		}
		if n < 0 {
			return Plan{}, errors.OutOfRange("numbytes", "numbytes must be non-negative")
		}
		plan.Units = n
	}
	if delay != "" {
		d, err := parseSeconds("delay", delay)
		if err != nil {
			return Plan{}, err
		}
		plan.Delay = d
	}

	if maxDuration > 0 &&
		(plan.Duration > maxDuration || plan.Delay > maxDuration-plan.Duration) {
		return Plan{}, errors.OutOfRange("duration",
			"duration plus delay must not exceed "+maxDuration.String())
	}
	return plan, nil
}

// LinePlan emits n lines at a fixed interval
func LinePlan(n int, interval time.Duration) Plan {
	return Plan{Units: n, Fixed: interval}
}

func parseSeconds(name, value string) (time.Duration, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.InvalidParameter(name, value, err)
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.OutOfRange(name, name+" must be non-negative")
	}
	if f > float64(math.MaxInt64/int64(time.Second)) {
		return 0, errors.OutOfRange(name, name+" is too large")
	}
	return time.Duration(f * float64(time.Second)), nil
}
