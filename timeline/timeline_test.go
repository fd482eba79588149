package timeline_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/redgreen"
	"github.com/m-mizutani/redgreen/timeline"
)

func TestStoreRecordsInOrder(t *testing.T) {
	ctx := context.Background()
	store := timeline.New()

	gt.NoError(t, store.AppendEvent(ctx, redgreen.Event{
		Type:    redgreen.EventRunStart,
		Message: "starting",
		Meta:    map[string]any{"project_id": "1"},
	}))
	gt.NoError(t, store.ReportStatus(ctx, "step 1: add export button"))
	gt.NoError(t, store.AppendEvent(ctx, redgreen.Event{Type: redgreen.EventStepDone}))

	entries := store.Entries()
	gt.Equal(t, len(entries), 3)
	gt.Equal(t, entries[0].Kind, timeline.EntryEvent)
	gt.Equal(t, entries[0].Type, redgreen.EventRunStart)
	gt.Equal(t, entries[1].Kind, timeline.EntryStatus)
	gt.Equal(t, entries[1].Message, "step 1: add export button")
	gt.Equal(t, entries[2].Type, redgreen.EventStepDone)

	// UUID v7 IDs sort by creation time.
	gt.True(t, entries[0].ID < entries[1].ID)
	gt.True(t, entries[1].ID < entries[2].ID)
}

func TestStoreConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	store := timeline.New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = store.ReportStatus(ctx, "working")
			}
		}()
	}
	wg.Wait()

	gt.Equal(t, len(store.Entries()), 160)
}

func TestStoreFlushToMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := timeline.NewMemoryRepository()
	store := timeline.New(
		timeline.WithRepository(repo),
		timeline.WithTimelineID("run-42"),
	)

	gt.NoError(t, store.ReportStatus(ctx, "planning"))
	gt.NoError(t, store.Flush(ctx))

	saved := repo.Get("run-42")
	gt.Value(t, saved).NotNil()
	gt.Equal(t, saved.ID, "run-42")
	gt.Equal(t, len(saved.Entries), 1)
}

func TestStoreFlushWithoutRepository(t *testing.T) {
	store := timeline.New()
	gt.NoError(t, store.Flush(context.Background()))
}

func TestFileRepositorySave(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := timeline.NewFileRepository(dir)
	store := timeline.New(
		timeline.WithRepository(repo),
		timeline.WithTimelineID("run-7"),
	)

	gt.NoError(t, store.AppendEvent(ctx, redgreen.Event{Type: redgreen.EventRunDone}))
	gt.NoError(t, store.Flush(ctx))

	data, err := os.ReadFile(filepath.Join(dir, "run-7.json"))
	gt.NoError(t, err)

	var saved timeline.Timeline
	gt.NoError(t, json.Unmarshal(data, &saved))
	gt.Equal(t, saved.ID, "run-7")
	gt.Equal(t, len(saved.Entries), 1)
	gt.Equal(t, saved.Entries[0].Type, redgreen.EventRunDone)
}
