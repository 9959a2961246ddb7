package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	mdwerror "github.com/msto63/lox/foundation/core/error"
	mdwlog "github.com/msto63/lox/foundation/core/log"
	"github.com/msto63/lox/foundation/lox"
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(SQLiteConfig{
		Path:   filepath.Join(t.TempDir(), "nested", "history.db"),
		Logger: mdwlog.Discard(),
	})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// both implementations must behave the same
func stores(t *testing.T) map[string]RunStore {
	return map[string]RunStore{
		"sqlite": newSQLite(t),
		"memory": NewMemoryStore(),
	}
}

func seed(t *testing.T, s RunStore) []*Run {
	t.Helper()
	now := time.Now().UTC()
	runs := []*Run{
		{Origin: OriginFile, Name: "a.lox", Source: "1 + 2", Tree: "(+ 1 2)", Tokens: 4, Timestamp: now.Add(-3 * time.Minute)},
		{Origin: OriginREPL, SessionID: "s1", Source: "(1", Tokens: 3, ExitCode: 65,
			Diagnostics: []string{"[line 1] Error at end: Expect ')' after expression."}, Timestamp: now.Add(-2 * time.Minute)},
		{Origin: OriginREPL, SessionID: "s1", Source: "true", Tree: "true", Tokens: 2, Timestamp: now.Add(-time.Minute)},
		{Origin: OriginGRPC, Source: "old", Tree: "old", Tokens: 2, Timestamp: now.Add(-48 * time.Hour)},
	}
	for _, r := range runs {
		if err := s.Record(context.Background(), r); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if r.ID == "" {
			t.Fatal("Record() should assign an id")
		}
	}
	return runs
}

func TestRunStore_RecordAndGet(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			runs := seed(t, s)
			ctx := context.Background()

			got, err := s.Get(ctx, runs[1].ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Source != "(1" || got.SessionID != "s1" || got.ExitCode != 65 || got.Origin != OriginREPL {
				t.Errorf("Get() = %+v", got)
			}
			if len(got.Diagnostics) != 1 || got.Diagnostics[0] != runs[1].Diagnostics[0] {
				t.Errorf("diagnostics = %v", got.Diagnostics)
			}
			if !got.Failed() {
				t.Error("Failed() = false for exit code 65")
			}

			_, err = s.Get(ctx, "missing")
			if !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
				t.Errorf("Get(missing) error = %v, want NOT_FOUND", err)
			}
		})
	}
}

func TestRunStore_List(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			runs := seed(t, s)
			ctx := context.Background()

			tests := []struct {
				name   string
				filter Filter
				want   []string
			}{
				{"all newest first", Filter{}, []string{runs[2].ID, runs[1].ID, runs[0].ID, runs[3].ID}},
				{"limit", Filter{Limit: 2}, []string{runs[2].ID, runs[1].ID}},
				{"offset", Filter{Limit: 2, Offset: 1}, []string{runs[1].ID, runs[0].ID}},
				{"origin", Filter{Origin: OriginREPL}, []string{runs[2].ID, runs[1].ID}},
				{"session", Filter{SessionID: "s1", OnlyFailed: true}, []string{runs[1].ID}},
				{"since", Filter{Since: time.Now().UTC().Add(-time.Hour)}, []string{runs[2].ID, runs[1].ID, runs[0].ID}},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := s.List(ctx, tt.filter)
					if err != nil {
						t.Fatalf("List() error = %v", err)
					}
					if len(got) != len(tt.want) {
						t.Fatalf("List() returned %d runs, want %d", len(got), len(tt.want))
					}
					for i := range got {
						if got[i].ID != tt.want[i] {
							t.Errorf("run[%d] = %s, want %s", i, got[i].ID, tt.want[i])
						}
					}
				})
			}
		})
	}
}

func TestRunStore_StatsAndPrune(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, s)
			ctx := context.Background()

			stats, err := s.Stats(ctx)
			if err != nil {
				t.Fatalf("Stats() error = %v", err)
			}
			if stats.Total != 4 || stats.Failed != 1 || stats.ByOrigin[OriginREPL] != 2 {
				t.Errorf("Stats() = %+v", stats)
			}

			n, err := s.Prune(ctx, 24*time.Hour)
			if err != nil || n != 1 {
				t.Fatalf("Prune() = %d, %v, want 1", n, err)
			}
			runs, _ := s.List(ctx, Filter{})
			if len(runs) != 3 {
				t.Errorf("after Prune() %d runs remain, want 3", len(runs))
			}
		})
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := NewSQLiteStore(SQLiteConfig{Path: path, Logger: mdwlog.Discard()})
	if err != nil {
		t.Fatal(err)
	}
	run := &Run{Origin: OriginFile, Source: "nil", Tree: "nil", Tokens: 2}
	if err := s.Record(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = NewSQLiteStore(SQLiteConfig{Path: path, Logger: mdwlog.Discard()})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.Get(context.Background(), run.ID); err != nil {
		t.Errorf("run lost after reopen: %v", err)
	}
}

func TestNewRun(t *testing.T) {
	engine, err := lox.New(lox.Options{Logger: mdwlog.Discard()})
	if err != nil {
		t.Fatal(err)
	}

	src := []byte("-1 * (2")
	res := engine.Process(src)
	run := NewRun(OriginWebSocket, "", src, res)

	if run.Origin != OriginWebSocket || run.Source != "-1 * (2" {
		t.Errorf("NewRun() = %+v", run)
	}
	if run.Tokens != 6 || run.Tree != "" || run.ExitCode != mdwerror.ExitDataErr {
		t.Errorf("tokens %d tree %q exit %d", run.Tokens, run.Tree, run.ExitCode)
	}
	if len(run.Diagnostics) != 1 {
		t.Errorf("diagnostics = %v", run.Diagnostics)
	}
}
