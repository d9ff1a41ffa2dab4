package audit

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/sohailKhanIITD/recipe-app-api/internal/testutil"
)

func TestDispatcherWritesQueuedEventsOnClose(t *testing.T) {
	db := testutil.NewDB(t)
	logger := New(db)
	d := NewDispatcher(logger, zap.NewNop(), 10)

	id := uint(42)
	d.Dispatch(Event{UserID: 1, Action: ActionRecipeCreated, Entity: EntityRecipe, EntityID: &id, Metadata: map[string]string{"title": "sample"}})
	d.Dispatch(Event{UserID: 1, Action: ActionRecipeUpdated, Entity: EntityRecipe, EntityID: &id})
	d.Dispatch(Event{UserID: 2, Action: ActionRecipeCreated, Entity: EntityRecipe})
	d.Close()

	// Events after Close are ignored rather than panicking on a closed channel.
	d.Dispatch(Event{UserID: 1, Action: ActionRecipeDeleted})
	d.Close()

	logs, total, err := logger.List(context.Background(), 1, "", 50, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 2 || len(logs) != 2 {
		t.Fatalf("List() total = %d len = %d, want 2", total, len(logs))
	}
	if logs[0].Action != ActionRecipeUpdated {
		t.Errorf("newest action = %q, want %q", logs[0].Action, ActionRecipeUpdated)
	}
	if logs[1].Metadata != `{"title":"sample"}` {
		t.Errorf("metadata = %q", logs[1].Metadata)
	}
	if logs[1].EntityID == nil || *logs[1].EntityID != 42 {
		t.Errorf("entity id = %v, want 42", logs[1].EntityID)
	}
}

func TestLoggerListFiltersAndPaginates(t *testing.T) {
	db := testutil.NewDB(t)
	logger := New(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := logger.Log(ctx, 5, ActionRecipeCreated, EntityRecipe, nil, nil); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}
	if err := logger.Log(ctx, 5, ActionRecipeDeleted, EntityRecipe, nil, nil); err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	logs, total, err := logger.List(ctx, 5, ActionRecipeCreated, 2, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(logs) != 1 {
		t.Errorf("page len = %d, want 1", len(logs))
	}
}
