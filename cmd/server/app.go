package main

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"chunkfall.ai/internal/logging"
	"chunkfall.ai/internal/persistence/indexdb"
	"chunkfall.ai/internal/sim/animation"
	"chunkfall.ai/internal/sim/catalogs"
	"chunkfall.ai/internal/sim/engine"
	"chunkfall.ai/internal/sim/generator"
	"chunkfall.ai/internal/sim/tuning"
	"chunkfall.ai/internal/sim/voxel"
)

// app holds the process-wide simulation objects. The voxel world and both
// managers are touched only from the engine goroutine; handlers go through
// eng.Do.
type app struct {
	tune  tuning.Tuning
	world *voxel.World
	gens  *generator.Manager
	anims *animation.Manager
	eng   *engine.Engine
	idx   *indexdb.SQLiteIndex
	log   *log.Logger
}

func newApp(tune tuning.Tuning, cats *catalogs.Catalogs, logger *log.Logger) *app {
	tune.Normalize()

	w := voxel.NewWorld(cats)
	wc := tune.World
	w.AddDimension(wc.ID, wc.MinY, wc.MaxY, voxel.TerrainGen{
		Seed:            wc.Seed,
		SurfaceY:        wc.MinY + (wc.MaxY-wc.MinY)/2,
		CavePermille:    20,
		CoalOrePermille: 12,
		IronOrePermille: 6,
	})
	for cx := -wc.LoadRadius; cx <= wc.LoadRadius; cx++ {
		for cz := -wc.LoadRadius; cz <= wc.LoadRadius; cz++ {
			w.LoadChunk(wc.ID, cx, cz)
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	anims := animation.NewManager(tune.Animation, w, rng)
	gens := generator.NewManager(generator.Options{
		Tuning:   tune.Generator,
		Catalogs: cats,
		World:    w,
		Animator: anims,
		Notifier: w,
		Random:   rng,
		Logger:   logging.Component(logger, "generator"),
	})
	eng := engine.New(engine.Options{
		Tuning:     tune,
		World:      w,
		Generators: gens,
		Animations: anims,
		Logger:     logging.Component(logger, "engine"),
	})
	return &app{
		tune:  tune,
		world: w,
		gens:  gens,
		anims: anims,
		eng:   eng,
		log:   logger,
	}
}
