package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"chunkfall.ai/internal/sim/catalogs"
	"chunkfall.ai/internal/sim/generator"
	"chunkfall.ai/internal/sim/tuning"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteIndex is a queryable copy of the generator event stream. Writes are
// queued to a single writer goroutine and dropped when the queue is full; the
// JSONL logs remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan generator.Event
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Uint64
	written atomic.Uint64
}

var _ generator.EventSink = (*SQLiteIndex)(nil)

type Stats struct {
	QueueDepth    int    `json:"queue_depth"`
	QueueCapacity int    `json:"queue_capacity"`
	DropTotal     uint64 `json:"drop_total"`
	WrittenTotal  uint64 `json:"written_total"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan generator.Event, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

// runMigrations applies the embedded schema. The migrate instance is not
// closed because that would close db as well.
func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) WriteEvent(e generator.Event) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- e:
	default:
		s.dropped.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
		DropTotal:     s.dropped.Load(),
		WrittenTotal:  s.written.Load(),
	}
}

// UpsertConfig stores the catalog digests and the tuning actually applied.
func (s *SQLiteIndex) UpsertConfig(cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	if cats != nil {
		if b, _ := json.Marshal(cats.Blocks.Palette); len(b) > 0 {
			rows = append(rows, kv{name: "blocks_palette", digest: cats.Blocks.PaletteDigest, json: b})
		}
		if b, _ := json.Marshal(cats.Items.Defs); len(b) > 0 {
			rows = append(rows, kv{name: "items_defs", digest: cats.Items.DefsDigest, json: b})
		}
	}
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO config(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.name == "" || r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insert, _ := s.db.Prepare(`INSERT INTO generator_events(tick,kind,world,x,y,z,count,tool,reason,recorded_at) VALUES(?,?,?,?,?,?,?,?,?,?)`)
	defer func() {
		if insert != nil {
			_ = insert.Close()
		}
	}()

	var (
		tx          *sql.Tx
		opCount     int
		commitEvery = 500
	)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
	}

	for {
		select {
		case e, ok := <-s.ch:
			if !ok {
				commit()
				return
			}
			begin()
			if tx == nil || insert == nil {
				s.dropped.Add(1)
				continue
			}
			if _, err := tx.Stmt(insert).Exec(
				int64(e.Tick), e.Kind, e.World, e.X, e.Y, e.Z, e.Count,
				nullString(e.Tool), nullString(e.Reason),
				time.Now().UTC().Format(time.RFC3339Nano),
			); err != nil {
				_ = tx.Rollback()
				tx = nil
				s.dropped.Add(uint64(opCount) + 1)
				continue
			}
			opCount++
			s.written.Add(1)
			if opCount >= commitEvery {
				commit()
			}
		case <-ticker.C:
			commit()
		}
	}
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
