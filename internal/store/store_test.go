package store

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datasheet/internal/config"
	"github.com/JonMunkholm/datasheet/internal/core"
)

func TestKindOf(t *testing.T) {
	tests := map[string]Kind{
		"postgres://u@h/db":    KindPostgres,
		"POSTGRESQL://u@h/db":  KindPostgres,
		"inventory.db":         KindSQLite,
		"/var/lib/app/data.db": KindSQLite,
	}
	for target, want := range tests {
		assert.Equal(t, want, KindOf(target), target)
	}
}

func TestOpen_EmptyTarget(t *testing.T) {
	_, err := Open(context.Background(), "", config.DatabaseConfig{})
	assert.ErrorIs(t, err, core.ErrNoTarget)
}

func TestOpen_SQLiteEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")

	s, err := Open(context.Background(), path, config.DatabaseConfig{BusyTimeout: time.Second})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, KindSQLite, s.Kind())

	tbl := core.Table{Columns: []string{"name"}, Rows: [][]core.Value{{core.Text("bolt")}}}
	require.NoError(t, s.Persist(context.Background(), "parts", tbl, core.IfExistsFail))
	assert.ErrorIs(t, s.Persist(context.Background(), "parts", tbl, core.IfExistsFail), core.ErrTableExists)
}

func TestSerialized_SameTableNeverOverlaps(t *testing.T) {
	var inFlight, maxInFlight int32
	slow := core.PersisterFunc(func(context.Context, string, core.Table, core.IfExists) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	})
	s := Serialize(slow)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Persist(context.Background(), "stock", core.Table{}, core.IfExistsAppend))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight)
}

func TestSerialized_DifferentTablesRunConcurrently(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 2)
	blocking := core.PersisterFunc(func(_ context.Context, name string, _ core.Table, _ core.IfExists) error {
		started <- name
		<-release
		return nil
	})
	s := Serialize(blocking)

	var wg sync.WaitGroup
	for _, name := range []string{"north", "south"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			assert.NoError(t, s.Persist(context.Background(), name, core.Table{}, core.IfExistsAppend))
		}(name)
	}

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case name := <-started:
			got[name] = true
		case <-time.After(2 * time.Second):
			t.Fatal("writes to different tables did not overlap")
		}
	}
	close(release)
	wg.Wait()

	assert.Equal(t, map[string]bool{"north": true, "south": true}, got)
}

func TestSerialized_CancelledWhileWaiting(t *testing.T) {
	called := false
	s := Serialize(core.PersisterFunc(func(context.Context, string, core.Table, core.IfExists) error {
		called = true
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Persist(ctx, "stock", core.Table{}, core.IfExistsAppend), context.Canceled)
	assert.False(t, called)
}
