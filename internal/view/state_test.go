package view

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddModalTransitions(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.OpenAddModal())
	assert.Equal(t, AddModalOpen, s.Mode)
	assert.ErrorIs(t, s.OpenRecipeInput(), ErrInvalidTransition)
	require.NoError(t, s.CloseAddModal())
	assert.Equal(t, Idle, s.Mode)
	assert.ErrorIs(t, s.CloseAddModal(), ErrInvalidTransition)
}

func TestGenerationFlow(t *testing.T) {
	s := NewSession()

	assert.ErrorIs(t, s.BeginGeneration(""), ErrInvalidTransition, "guidance form must be open")

	require.NoError(t, s.OpenRecipeInput())
	require.NoError(t, s.BeginGeneration("  vegan  "))
	assert.Equal(t, Generating, s.Mode)
	assert.Equal(t, "vegan", s.Guidance)

	assert.ErrorIs(t, s.BeginGeneration("again"), ErrGenerationInProgress)

	require.NoError(t, s.CompleteGeneration("Recipe Name: Tofu"))
	assert.Equal(t, RecipeShown, s.Mode)
	assert.Equal(t, "Recipe Name: Tofu", s.Recipe)

	require.NoError(t, s.CloseRecipe())
	assert.Equal(t, Idle, s.Mode)
	assert.Empty(t, s.Recipe)
}

func TestGenerationFailure(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.OpenRecipeInput())
	require.NoError(t, s.BeginGeneration(""))
	require.NoError(t, s.FailGeneration())

	assert.Equal(t, Idle, s.Mode)
	assert.Equal(t, AlertGenerationFailed, s.TakeAlert())
	assert.Empty(t, s.TakeAlert(), "alerts are shown once")
}

func TestCompleteWithoutGenerationIsRejected(t *testing.T) {
	s := NewSession()
	assert.ErrorIs(t, s.CompleteGeneration("x"), ErrInvalidTransition)
	assert.ErrorIs(t, s.FailGeneration(), ErrInvalidTransition)
	assert.ErrorIs(t, s.CloseRecipe(), ErrInvalidTransition)
}

func TestEditDrafts(t *testing.T) {
	s := NewSession()

	assert.ErrorIs(t, s.UpdateDraft("x", 1), ErrNotEditing)

	require.NoError(t, s.BeginEdit("egg", 2))
	require.NoError(t, s.UpdateDraft("eggs", 6))
	assert.Equal(t, &Draft{Original: "egg", Name: "eggs", Count: 6}, s.Editing)

	s.RejectEdit(AlertDuplicateName)
	name, ok := s.EditingName()
	assert.True(t, ok)
	assert.Equal(t, "egg", name)
	assert.Equal(t, AlertDuplicateName, s.TakeAlert())

	s.CancelEdit()
	_, ok = s.EditingName()
	assert.False(t, ok)

	require.NoError(t, s.BeginEdit("milk", 1))
	require.NoError(t, s.BeginEdit("rice", 3))
	assert.Equal(t, "rice", s.Editing.Original, "only one card is edited at a time")
	s.FinishEdit()
	assert.Nil(t, s.Editing)
}

func TestEditRequiresIdle(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.OpenAddModal())
	assert.ErrorIs(t, s.BeginEdit("egg", 1), ErrInvalidTransition)
}

func TestStoreRenderConsumesAlert(t *testing.T) {
	store := NewStore()
	user := uuid.New()

	require.NoError(t, store.Update(user, func(s *Session) error {
		s.SetAlert("hello")
		return s.BeginEdit("egg", 1)
	}))

	snap := store.Render(user)
	assert.Equal(t, "hello", snap.Alert)
	require.NotNil(t, snap.Editing)
	snap.Editing.Name = "changed"

	again := store.Render(user)
	assert.Empty(t, again.Alert)
	assert.Equal(t, "egg", again.Editing.Name, "snapshots do not alias the session")

	store.Delete(user)
	assert.Equal(t, Idle, store.Render(user).Mode)
	assert.Nil(t, store.Render(user).Editing)
}

func TestStoreSerializesGeneration(t *testing.T) {
	store := NewStore()
	user := uuid.New()
	require.NoError(t, store.Update(user, func(s *Session) error { return s.OpenRecipeInput() }))

	var wg sync.WaitGroup
	var mu sync.Mutex
	started := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Update(user, func(s *Session) error { return s.BeginGeneration("") })
			if err == nil {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, started)
}
