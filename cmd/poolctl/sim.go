package main

import (
	"math/rand"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/fixedpool/pool"
)

// simConfig drives one task context and one interrupt context.
type simConfig struct {
	Ops    int   // operations per context
	Seed   int64 // task seed; the interrupt context uses Seed+1
	MaxLen int   // largest requested length
	Hold   int   // blocks the task context may hold at once (0 = unbounded)
}

// contextResult counts what one context did.
type contextResult struct {
	Context  string `json:"context"`
	Allocs   int    `json:"allocs"`
	Frees    int    `json:"frees"`
	Failures int    `json:"failures"`
}

type simResult struct {
	Task      contextResult `json:"task"`
	Interrupt contextResult `json:"interrupt"`
}

// simulate runs both contexts to completion and returns what each one did.
// Every block is freed before it returns. The task context keeps blocks for
// a while; the interrupt context frees each block right after using it, like
// a receive handler copying a frame into a short-lived buffer.
func simulate(a *pool.Allocator, cfg simConfig) (simResult, error) {
	if cfg.MaxLen <= 0 {
		return simResult{}, errors.Newf("simulate: max length must be positive, got %d", cfg.MaxLen)
	}
	res := simResult{
		Task:      contextResult{Context: pool.ContextTask.String()},
		Interrupt: contextResult{Context: pool.ContextInterrupt.String()},
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = runTask(a, cfg, &res.Task)
	}()
	go func() {
		defer wg.Done()
		errs[1] = runInterrupt(a, cfg, &res.Interrupt)
	}()
	wg.Wait()

	return res, errors.Join(errs...)
}

func runTask(a *pool.Allocator, cfg simConfig, res *contextResult) error {
	rng := rand.New(rand.NewSource(cfg.Seed))
	var held []pool.Ref
	free := func(i int) error {
		ref := held[i]
		held[i] = held[len(held)-1]
		held = held[:len(held)-1]
		if err := a.Deallocate(ref); err != nil {
			return err
		}
		res.Frees++
		return nil
	}

	for range cfg.Ops {
		full := cfg.Hold > 0 && len(held) >= cfg.Hold
		if len(held) == 0 || (!full && rng.Intn(3) > 0) {
			ref, b, err := a.Allocate(1 + rng.Intn(cfg.MaxLen))
			if errors.Is(err, pool.ErrNoMemory) {
				res.Failures++
				continue
			}
			if err != nil {
				return errors.Wrap(err, "task allocate")
			}
			clear(b)
			held = append(held, ref)
			res.Allocs++
			continue
		}
		if err := free(rng.Intn(len(held))); err != nil {
			return errors.Wrap(err, "task free")
		}
	}
	for len(held) > 0 {
		if err := free(len(held) - 1); err != nil {
			return errors.Wrap(err, "task drain")
		}
	}
	return nil
}

func runInterrupt(a *pool.Allocator, cfg simConfig, res *contextResult) error {
	rng := rand.New(rand.NewSource(cfg.Seed + 1))
	for range cfg.Ops {
		ref, b, err := a.Allocate(1 + rng.Intn(cfg.MaxLen))
		if errors.Is(err, pool.ErrNoMemory) {
			res.Failures++
			continue
		}
		if err != nil {
			return errors.Wrap(err, "interrupt allocate")
		}
		res.Allocs++
		b[0] = byte(res.Allocs)
		if err := a.Deallocate(ref); err != nil {
			return errors.Wrap(err, "interrupt free")
		}
		res.Frees++
	}
	return nil
}
