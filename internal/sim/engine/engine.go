// Package engine runs the generator simulation on a single goroutine. Both
// tick sources, every world mutation and every external command are served
// by the same loop, so the managers it drives need no locking.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"chunkfall.ai/internal/protocol"
	"chunkfall.ai/internal/sim/animation"
	"chunkfall.ai/internal/sim/generator"
	"chunkfall.ai/internal/sim/kernel/model"
	"chunkfall.ai/internal/sim/kernel/ports"
	"chunkfall.ai/internal/sim/tuning"
)

// ErrStopped is returned for commands submitted after the loop has exited.
var ErrStopped = errors.New("engine stopped")

type Options struct {
	Tuning     tuning.Tuning
	World      ports.World
	Generators *generator.Manager
	Animations *animation.Manager
	Logger     *log.Logger
}

type ObserverJoinRequest struct {
	SessionID string
	Out       chan []byte
}

type execReq struct {
	fn   func()
	done chan struct{}
}

type Engine struct {
	cfg   tuning.Tuning
	world ports.World
	gens  *generator.Manager
	anims *animation.Manager
	log   *log.Logger

	tick   atomic.Uint64
	latest atomic.Pointer[protocol.StatusFrame]

	exec          chan execReq
	observerJoin  chan ObserverJoinRequest
	observerLeave chan string
	stop          chan struct{}
	stopOnce      sync.Once
	done          chan struct{}

	observers map[string]chan []byte
}

func New(opts Options) *Engine {
	cfg := opts.Tuning
	cfg.Normalize()
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e := &Engine{
		cfg:           cfg,
		world:         opts.World,
		gens:          opts.Generators,
		anims:         opts.Animations,
		log:           logger,
		exec:          make(chan execReq, 64),
		observerJoin:  make(chan ObserverJoinRequest, 16),
		observerLeave: make(chan string, 16),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
		observers:     map[string]chan []byte{},
	}
	frame := e.buildStatus()
	e.latest.Store(&frame)
	return e
}

func (e *Engine) ObserverJoin() chan<- ObserverJoinRequest { return e.observerJoin }
func (e *Engine) ObserverLeave() chan<- string             { return e.observerLeave }

func (e *Engine) CurrentTick() uint64 { return e.tick.Load() }

func (e *Engine) TickRateHz() int { return e.cfg.TickRateHz }

// LatestStatus is the frame published after the most recent production cycle.
// It is safe to call from any goroutine.
func (e *Engine) LatestStatus() protocol.StatusFrame { return *e.latest.Load() }

// Run drives the loop until ctx is cancelled or Stop is called. On exit every
// generator and prop is cleared.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	defer e.shutdown()

	interval := time.Second / time.Duration(e.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.log.Info("engine started", "tick_rate_hz", e.cfg.TickRateHz,
		"ticks_per_cycle", e.cfg.Generator.TicksPerCycle, "animation_update_ticks", e.cfg.Animation.UpdateTicks)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.stop:
			return nil
		case req := <-e.exec:
			req.fn()
			close(req.done)
		case req := <-e.observerJoin:
			e.observers[req.SessionID] = req.Out
		case id := <-e.observerLeave:
			delete(e.observers, id)
		case <-ticker.C:
			e.StepOnce()
		}
	}
}

func (e *Engine) Stop() { e.stopOnce.Do(func() { close(e.stop) }) }

// StepOnce advances one game tick: a production cycle every ticks_per_cycle
// ticks and an animation frame every update_ticks ticks. It must only be
// called from the loop goroutine, or by tests that never start Run.
func (e *Engine) StepOnce() uint64 {
	tick := e.tick.Add(1)
	if tick%uint64(e.cfg.Generator.TicksPerCycle) == 0 {
		e.gens.Tick(tick)
		e.publish()
	}
	if tick%uint64(e.cfg.Animation.UpdateTicks) == 0 {
		e.anims.Tick()
	}
	return tick
}

func (e *Engine) shutdown() {
	e.gens.Clear()
	e.anims.Clear()
	e.observers = map[string]chan []byte{}
	e.log.Info("engine stopped", "tick", e.tick.Load())
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (e *Engine) Do(ctx context.Context, fn func()) error {
	req := execReq{fn: fn, done: make(chan struct{})}
	select {
	case e.exec <- req:
	case <-e.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req.done:
		return nil
	case <-e.done:
		select {
		case <-req.done:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) Interact(ctx context.Context, req generator.InteractRequest) (generator.InteractResult, error) {
	var res generator.InteractResult
	err := e.Do(ctx, func() { res = e.gens.HandleInteract(req) })
	return res, err
}

func (e *Engine) Break(ctx context.Context, site model.Site, player string) (bool, error) {
	var removed bool
	err := e.Do(ctx, func() { removed = e.gens.HandleBreak(site, player) })
	return removed, err
}

// Status builds a fresh frame on the loop goroutine.
func (e *Engine) Status(ctx context.Context) (protocol.StatusFrame, error) {
	var frame protocol.StatusFrame
	err := e.Do(ctx, func() { frame = e.buildStatus() })
	return frame, err
}

func (e *Engine) publish() {
	frame := e.buildStatus()
	e.latest.Store(&frame)
	if len(e.observers) == 0 {
		return
	}
	b, err := json.Marshal(frame)
	if err != nil {
		e.log.Error("marshal status", "err", err)
		return
	}
	for _, out := range e.observers {
		sendLatest(out, b)
	}
}

func (e *Engine) buildStatus() protocol.StatusFrame {
	entries := e.gens.Entries()
	gens := make([]protocol.GeneratorStatus, 0, len(entries))
	for _, en := range entries {
		gs := protocol.GeneratorStatus{
			World:       en.Site.World,
			Pos:         [3]int{en.Site.Pos.X, en.Site.Pos.Y, en.Site.Pos.Z},
			Progress:    en.State.Progress,
			FuelCharges: en.State.FuelCharges,
		}
		if inv, ok := e.world.Container(en.Site.World, en.Site.Pos); ok {
			if tool := inv.Item(0); !tool.Empty() {
				gs.Tool = tool.Item
				gs.ToolDamage = tool.Damage
			}
		}
		_, gs.Animated = e.anims.Actor(en.Site)
		gens = append(gens, gs)
	}
	st := e.gens.Stats()
	return protocol.StatusFrame{
		Type:            protocol.TypeGenStatus,
		ProtocolVersion: protocol.Version,
		Tick:            e.tick.Load(),
		Generators:      gens,
		Animations:      e.anims.Count(),
		Swings:          e.anims.Swings(),
		MinedTotal:      st.MinedTotal,
		ToolBreaks:      st.ToolBreaks,
		Invalidated:     st.Invalidated,
	}
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
