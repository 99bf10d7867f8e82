package bench

import (
	"context"
	"fmt"
)

// Run drives d to completion on q and returns its timing record.
//
// Each activation posts its successor only after it has returned, so no two
// activations overlap. The first redraw error stops the loop and is returned
// without a partial result. Run closes q when it finishes.
func Run(ctx context.Context, q *Queue, d *Driver) (Result, error) {
	var runErr error

	var step func()
	step = func() {
		if err := ctx.Err(); err != nil {
			runErr = err
			q.Close()
			return
		}
		state, err := d.Advance()
		if err != nil {
			runErr = err
			q.Close()
			return
		}
		if state == Done {
			q.Close()
			return
		}
		if err := q.Post(step); err != nil {
			runErr = err
		}
	}

	if err := q.Post(step); err != nil {
		return Result{}, err
	}
	if err := q.Run(ctx); err != nil {
		q.Close()
		return Result{}, err
	}
	if runErr != nil {
		return Result{}, runErr
	}

	res, ok := d.Result()
	if !ok {
		return Result{}, fmt.Errorf("bench: stopped after %d of %d iterations", d.Iteration(), d.cfg.Total())
	}
	return res, nil
}
