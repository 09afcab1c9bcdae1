package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"chunkfall.ai/internal/logging"
	"chunkfall.ai/internal/protocol"
	"chunkfall.ai/internal/sim/engine"
	"chunkfall.ai/internal/sim/generator"
	"chunkfall.ai/internal/sim/kernel/model"
	"chunkfall.ai/internal/sim/voxel"
	"chunkfall.ai/internal/transport/observer"
)

const commandTimeout = 5 * time.Second

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	r.Get("/metrics", a.handleMetrics)

	obs := observer.NewServer(a.eng, logging.Component(a.log, "observer"))
	r.Route("/admin/v1", func(r chi.Router) {
		// Local-only; drives the in-memory world directly.
		r.Use(loopbackOnly)
		r.Get("/generators", a.handleGenerators)
		r.Post("/interact", a.handleInteract)
		r.Post("/break", a.handleBreak)
		r.Post("/block", a.handleSetBlock)
		r.Post("/slot", a.handleSetSlot)
		r.Get("/index/sites", a.handleIndexSites)
		r.Get("/index/kinds", a.handleIndexKinds)
		r.Get("/observer/bootstrap", obs.BootstrapHandler())
		r.Get("/observer/ws", obs.WSHandler())
	})
	return r
}

func (a *app) handleGenerators(rw http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()
	frame, err := a.eng.Status(ctx)
	if err != nil {
		a.renderEngineError(rw, r, err)
		return
	}
	render.JSON(rw, r, frame)
}

func (a *app) handleInteract(rw http.ResponseWriter, r *http.Request) {
	var msg protocol.InteractMsg
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		a.renderResult(rw, r, http.StatusBadRequest, protocol.ErrProtoBadRequest, "bad_request", nil)
		return
	}
	if strings.TrimSpace(msg.Player) == "" || msg.World == "" {
		a.renderResult(rw, r, http.StatusBadRequest, protocol.ErrBadRequest, "bad_request", nil)
		return
	}

	var (
		found   bool
		res     generator.InteractResult
		notices []protocol.PlayerNotice
	)
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()
	err := a.eng.Do(ctx, func() {
		if !a.world.WorldExists(msg.World) {
			return
		}
		found = true
		p := a.world.Player(msg.Player)
		p.SetSneaking(msg.Sneaking)
		p.SetMainHand(stackFromRef(msg.Hand))
		res = a.gens.HandleInteract(generator.InteractRequest{
			Player:     p,
			Block:      siteOf(msg.World, msg.Pos),
			RightClick: true,
			MainHand:   !msg.OffHand,
		})
		notices = noticesFor(a.world.DrainMessages(), msg.Player)
	})
	if err != nil {
		a.renderEngineError(rw, r, err)
		return
	}
	if !found {
		a.renderResult(rw, r, http.StatusNotFound, protocol.ErrWorldNotFound, "ignored", nil)
		return
	}
	a.renderResult(rw, r, http.StatusOK, interactCode(res), res.String(), notices)
}

func (a *app) handleBreak(rw http.ResponseWriter, r *http.Request) {
	var msg protocol.BreakMsg
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		a.renderResult(rw, r, http.StatusBadRequest, protocol.ErrProtoBadRequest, "bad_request", nil)
		return
	}
	if msg.World == "" {
		a.renderResult(rw, r, http.StatusBadRequest, protocol.ErrBadRequest, "bad_request", nil)
		return
	}

	var (
		found, removed bool
		notices        []protocol.PlayerNotice
	)
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()
	err := a.eng.Do(ctx, func() {
		if !a.world.WorldExists(msg.World) {
			return
		}
		found = true
		site := siteOf(msg.World, msg.Pos)
		removed = a.gens.HandleBreak(site, msg.Player)
		a.world.SetBlock(site.World, site.Pos, "AIR")
		notices = noticesFor(a.world.DrainMessages(), msg.Player)
	})
	if err != nil {
		a.renderEngineError(rw, r, err)
		return
	}
	if !found {
		a.renderResult(rw, r, http.StatusNotFound, protocol.ErrWorldNotFound, "ignored", nil)
		return
	}
	result := "ignored"
	if removed {
		result = "removed"
	}
	a.renderResult(rw, r, http.StatusOK, "", result, notices)
}

type setBlockReq struct {
	World string `json:"world"`
	Pos   [3]int `json:"pos"`
	Block string `json:"block"`
}

func (a *app) handleSetBlock(rw http.ResponseWriter, r *http.Request) {
	var req setBlockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.World == "" || req.Block == "" {
		a.renderResult(rw, r, http.StatusBadRequest, protocol.ErrBadRequest, "bad_request", nil)
		return
	}
	var found bool
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()
	err := a.eng.Do(ctx, func() {
		if !a.world.WorldExists(req.World) {
			return
		}
		found = true
		a.world.SetBlock(req.World, vec(req.Pos), req.Block)
	})
	if err != nil {
		a.renderEngineError(rw, r, err)
		return
	}
	if !found {
		a.renderResult(rw, r, http.StatusNotFound, protocol.ErrWorldNotFound, "ignored", nil)
		return
	}
	a.renderResult(rw, r, http.StatusOK, "", "ok", nil)
}

type setSlotReq struct {
	World string            `json:"world"`
	Pos   [3]int            `json:"pos"`
	Slot  int               `json:"slot"`
	Item  *protocol.ItemRef `json:"item,omitempty"`
}

func (a *app) handleSetSlot(rw http.ResponseWriter, r *http.Request) {
	var req setSlotReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.World == "" || req.Slot < 0 {
		a.renderResult(rw, r, http.StatusBadRequest, protocol.ErrBadRequest, "bad_request", nil)
		return
	}
	var inv *voxel.Container
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()
	err := a.eng.Do(ctx, func() {
		inv = a.world.ContainerAt(req.World, vec(req.Pos))
		if inv == nil || req.Slot >= inv.Size() {
			inv = nil
			return
		}
		inv.SetItem(req.Slot, stackFromRef(req.Item))
	})
	if err != nil {
		a.renderEngineError(rw, r, err)
		return
	}
	if inv == nil {
		a.renderResult(rw, r, http.StatusNotFound, protocol.ErrInvalidTarget, "ignored", nil)
		return
	}
	a.renderResult(rw, r, http.StatusOK, "", "ok", nil)
}

func (a *app) handleIndexSites(rw http.ResponseWriter, r *http.Request) {
	if a.idx == nil {
		http.Error(rw, "index disabled", http.StatusNotFound)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := a.idx.MinedBySite(r.Context(), limit)
	if err != nil {
		a.log.Error("index query", "err", err)
		http.Error(rw, "index query failed", http.StatusInternalServerError)
		return
	}
	render.JSON(rw, r, rows)
}

func (a *app) handleIndexKinds(rw http.ResponseWriter, r *http.Request) {
	if a.idx == nil {
		http.Error(rw, "index disabled", http.StatusNotFound)
		return
	}
	counts, err := a.idx.CountByKind(r.Context())
	if err != nil {
		a.log.Error("index query", "err", err)
		http.Error(rw, "index query failed", http.StatusInternalServerError)
		return
	}
	render.JSON(rw, r, counts)
}

func (a *app) handleMetrics(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

	f := a.eng.LatestStatus()
	world := a.tune.World.ID

	// Minimal Prometheus exposition format.
	fmt.Fprintf(rw, "# HELP chunkfall_tick Current engine tick.\n")
	fmt.Fprintf(rw, "# TYPE chunkfall_tick gauge\n")
	fmt.Fprintf(rw, "chunkfall_tick{world=%q} %d\n", world, a.eng.CurrentTick())

	fmt.Fprintf(rw, "# HELP chunkfall_generators Registered generators at the last production cycle.\n")
	fmt.Fprintf(rw, "# TYPE chunkfall_generators gauge\n")
	fmt.Fprintf(rw, "chunkfall_generators{world=%q} %d\n", world, len(f.Generators))

	fmt.Fprintf(rw, "# HELP chunkfall_animations Live floating props and swing props.\n")
	fmt.Fprintf(rw, "# TYPE chunkfall_animations gauge\n")
	fmt.Fprintf(rw, "chunkfall_animations{world=%q,kind=%q} %d\n", world, "prop", f.Animations)
	fmt.Fprintf(rw, "chunkfall_animations{world=%q,kind=%q} %d\n", world, "swing", f.Swings)

	fmt.Fprintf(rw, "# HELP chunkfall_mined_total Output items produced.\n")
	fmt.Fprintf(rw, "# TYPE chunkfall_mined_total counter\n")
	fmt.Fprintf(rw, "chunkfall_mined_total{world=%q} %d\n", world, f.MinedTotal)

	fmt.Fprintf(rw, "# HELP chunkfall_tool_breaks_total Tools destroyed by wear.\n")
	fmt.Fprintf(rw, "# TYPE chunkfall_tool_breaks_total counter\n")
	fmt.Fprintf(rw, "chunkfall_tool_breaks_total{world=%q} %d\n", world, f.ToolBreaks)

	fmt.Fprintf(rw, "# HELP chunkfall_invalidated_total Generators dropped because their container vanished.\n")
	fmt.Fprintf(rw, "# TYPE chunkfall_invalidated_total counter\n")
	fmt.Fprintf(rw, "chunkfall_invalidated_total{world=%q} %d\n", world, f.Invalidated)

	if a.idx != nil {
		st := a.idx.Stats()
		fmt.Fprintf(rw, "# HELP chunkfall_index_queue_depth Pending event index writes.\n")
		fmt.Fprintf(rw, "# TYPE chunkfall_index_queue_depth gauge\n")
		fmt.Fprintf(rw, "chunkfall_index_queue_depth %d\n", st.QueueDepth)
		fmt.Fprintf(rw, "# HELP chunkfall_index_dropped_total Events dropped because the index queue was full.\n")
		fmt.Fprintf(rw, "# TYPE chunkfall_index_dropped_total counter\n")
		fmt.Fprintf(rw, "chunkfall_index_dropped_total %d\n", st.DropTotal)
		fmt.Fprintf(rw, "# HELP chunkfall_index_written_total Events committed to the index.\n")
		fmt.Fprintf(rw, "# TYPE chunkfall_index_written_total counter\n")
		fmt.Fprintf(rw, "chunkfall_index_written_total %d\n", st.WrittenTotal)
	}
}

func (a *app) renderResult(rw http.ResponseWriter, r *http.Request, status int, code, result string, notices []protocol.PlayerNotice) {
	render.Status(r, status)
	render.JSON(rw, r, protocol.ResultMsg{
		Type:     protocol.TypeResult,
		Tick:     a.eng.CurrentTick(),
		Code:     code,
		Result:   result,
		Messages: notices,
	})
}

func (a *app) renderEngineError(rw http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, engine.ErrStopped) {
		a.renderResult(rw, r, http.StatusServiceUnavailable, protocol.ErrStopped, "stopped", nil)
		return
	}
	a.log.Error("engine command", "err", err)
	a.renderResult(rw, r, http.StatusGatewayTimeout, protocol.ErrInternal, "timeout", nil)
}

func interactCode(res generator.InteractResult) string {
	switch res {
	case generator.InteractAlreadyGenerator, generator.InteractSlotOccupied:
		return protocol.ErrConflict
	case generator.InteractNoInventory, generator.InteractIgnored:
		return protocol.ErrInvalidTarget
	default:
		return ""
	}
}

func noticesFor(msgs []voxel.Message, player string) []protocol.PlayerNotice {
	var out []protocol.PlayerNotice
	for _, m := range msgs {
		if m.Player != player {
			continue
		}
		out = append(out, protocol.PlayerNotice{Level: m.Level.String(), Text: m.Text})
	}
	return out
}

func stackFromRef(ref *protocol.ItemRef) *model.ItemStack {
	if ref == nil || ref.Item == "" {
		return nil
	}
	count := ref.Count
	if count <= 0 {
		count = 1
	}
	return &model.ItemStack{
		Item:       ref.Item,
		Count:      count,
		Damage:     ref.Damage,
		Efficiency: ref.Efficiency,
		Unbreaking: ref.Unbreaking,
	}
}

func siteOf(world string, pos [3]int) model.Site {
	return model.Site{World: world, Pos: vec(pos)}
}

func vec(pos [3]int) model.Vec3i {
	return model.Vec3i{X: pos[0], Y: pos[1], Z: pos[2]}
}

func loopbackOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(rw, r)
	})
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
