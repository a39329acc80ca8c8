package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/bulls-and-cows/game/engine"
)

func seq(s string) engine.Sequence {
	return engine.ParseSequence(s)
}

func guess(t *testing.T, m *Manager, id ID, text string) (engine.Result, error) {
	t.Helper()
	var res engine.Result
	err := m.WithGame(id, func(g *engine.Game) error {
		var err error
		res, err = g.Guess(seq(text))
		return err
	})
	return res, err
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()

	t.Run("ids start at one and increase", func(t *testing.T) {
		first, err := manager.Create(seq("1234"), 5)
		require.NoError(t, err)
		second, err := manager.Create(seq("5678"), 5)
		require.NoError(t, err)

		assert.Equal(t, ID(1), first)
		assert.Equal(t, ID(2), second)
		assert.Equal(t, 2, manager.Count())
	})

	t.Run("non unique secret", func(t *testing.T) {
		before := manager.Count()
		_, err := manager.Create(seq("1123"), 5)
		assert.ErrorIs(t, err, engine.ErrNonUniqueSequence)
		assert.Equal(t, before, manager.Count())
	})

	t.Run("failed create does not reuse ids", func(t *testing.T) {
		id, err := manager.Create(seq("9876"), 5)
		require.NoError(t, err)
		assert.Equal(t, ID(3), id)
	})
}

func TestManager_WithGame(t *testing.T) {
	manager := NewManager()
	id, err := manager.Create(seq("1234"), 5)
	require.NoError(t, err)

	t.Run("unknown session", func(t *testing.T) {
		called := false
		err := manager.WithGame(id+100, func(g *engine.Game) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, ErrUnknownSession)
		assert.False(t, called)
	})

	t.Run("returns fn error", func(t *testing.T) {
		sentinel := errors.New("boom")
		err := manager.WithGame(id, func(g *engine.Game) error { return sentinel })
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("guess scenario", func(t *testing.T) {
		res, err := guess(t, manager, id, "1243")
		require.NoError(t, err)
		assert.Equal(t, engine.Result{Outcome: engine.OutcomeFeedback, Bulls: 2, Cows: 2}, res)

		res, err = guess(t, manager, id, "1234")
		require.NoError(t, err)
		assert.Equal(t, engine.OutcomeWin, res.Outcome)

		_, err = guess(t, manager, id, "12")
		assert.ErrorIs(t, err, engine.ErrLengthMismatch)

		history, err := manager.HistoryOf(id)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("updates last accessed", func(t *testing.T) {
		now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		manager.now = func() time.Time { return now }
		require.NoError(t, manager.WithGame(id, func(g *engine.Game) error { return nil }))

		info, err := manager.Info(id)
		require.NoError(t, err)
		assert.Equal(t, now, info.LastAccessedAt)
		assert.True(t, info.CreatedAt.Before(now))
	})
}

func TestManager_HistoryOf(t *testing.T) {
	manager := NewManager()

	_, err := manager.HistoryOf(1)
	assert.ErrorIs(t, err, ErrUnknownSession)

	id, err := manager.Create(seq("4567"), 10)
	require.NoError(t, err)

	history, err := manager.HistoryOf(id)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = guess(t, manager, id, "7654")
	require.NoError(t, err)

	history, err = manager.HistoryOf(id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, engine.HistoryEntry{Guess: "7654", Bulls: 0, Cows: 4}, history[0])

	// snapshot must not alias the stored history
	history[0].Guess = "changed"
	again, err := manager.HistoryOf(id)
	require.NoError(t, err)
	assert.Equal(t, "7654", again[0].Guess)
}

func TestManager_InfoAndList(t *testing.T) {
	manager := NewManager()
	assert.Empty(t, manager.List())

	_, err := manager.Info(7)
	assert.ErrorIs(t, err, ErrUnknownSession)

	for _, secret := range []string{"1234", "98765", "123456789"} {
		_, err := manager.Create(seq(secret), 3)
		require.NoError(t, err)
	}

	list := manager.List()
	require.Len(t, list, 3)
	for i, info := range list {
		assert.Equal(t, ID(i+1), info.ID)
		assert.Equal(t, engine.InProgress, info.State)
		assert.Equal(t, uint32(3), info.MaxAttempts)
	}
	assert.Equal(t, 5, list[1].Length)
	assert.Equal(t, "98765", list[1].Secret.String())
}

func TestManager_CountActive(t *testing.T) {
	manager := NewManager()
	assert.Zero(t, manager.CountActive())

	won, err := manager.Create(seq("1234"), 3)
	require.NoError(t, err)
	lost, err := manager.Create(seq("5678"), 0)
	require.NoError(t, err)
	_, err = manager.Create(seq("98765"), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, manager.CountActive())

	_, err = guess(t, manager, won, "1234")
	require.NoError(t, err)
	res, err := guess(t, manager, lost, "1234")
	require.NoError(t, err)
	require.Equal(t, engine.OutcomeLoss, res.Outcome)

	assert.Equal(t, 1, manager.CountActive())
	assert.Equal(t, 3, manager.Count())
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, ID(42), id)
	assert.Equal(t, "42", id.String())

	for _, bad := range []string{"", "-1", "abc", "1.5"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalidSessionID, bad)
	}
}

func TestIDPool_Concurrent(t *testing.T) {
	pool := NewIDPool()
	const workers, perWorker = 32, 500

	results := make(chan ID, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				results <- pool.Next()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[ID]bool, workers*perWorker)
	for id := range results {
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, ID(workers*perWorker+1), pool.Next())
}

func TestManager_ConcurrentCreate(t *testing.T) {
	manager := NewManager()
	const n = 200

	ids := make(chan ID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := manager.Create(seq("1234"), 5)
			if assert.NoError(t, err) {
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[ID]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, manager.Count())
}

func TestManager_ConcurrentGuessesSameSession(t *testing.T) {
	manager := NewManager()
	const workers, perWorker = 16, 50
	id, err := manager.Create(seq("123456789"), workers*perWorker+10)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				res, err := guess(t, manager, id, "987654321")
				if assert.NoError(t, err) {
					assert.Equal(t, engine.OutcomeFeedback, res.Outcome)
				}
			}
		}()
	}
	wg.Wait()

	history, err := manager.HistoryOf(id)
	require.NoError(t, err)
	assert.Len(t, history, workers*perWorker)
	for _, h := range history {
		assert.Equal(t, engine.HistoryEntry{Guess: "987654321", Bulls: 1, Cows: 8}, h)
	}
}

func TestManager_ConcurrentTerminalRace(t *testing.T) {
	manager := NewManager()
	id, err := manager.Create(seq("1234"), 100)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := guess(t, manager, id, "1234")
			if assert.NoError(t, err) {
				assert.Equal(t, engine.OutcomeWin, res.Outcome)
			}
		}()
	}
	wg.Wait()

	history, err := manager.HistoryOf(id)
	require.NoError(t, err)
	assert.Len(t, history, 1, "only the first winning guess is recorded")
}

func TestManager_SessionsDoNotBlockEachOther(t *testing.T) {
	manager := NewManager()
	a, err := manager.Create(seq("1234"), 5)
	require.NoError(t, err)
	b, err := manager.Create(seq("5678"), 5)
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- manager.WithGame(a, func(g *engine.Game) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	finished := make(chan struct{})
	go func() {
		_, err := guess(t, manager, b, "8765")
		assert.NoError(t, err)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("guess on another session blocked while session a was held")
	}

	close(release)
	require.NoError(t, <-done)
}

func TestManager_PanicReleasesLock(t *testing.T) {
	manager := NewManager()
	id, err := manager.Create(seq("1234"), 5)
	require.NoError(t, err)

	func() {
		defer func() { _ = recover() }()
		_ = manager.WithGame(id, func(g *engine.Game) error { panic("boom") })
	}()

	_, err = guess(t, manager, id, "4321")
	assert.NoError(t, err)
}
