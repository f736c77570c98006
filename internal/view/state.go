package view

import (
	"errors"
	"strings"
)

// Mode is the modal state of the pantry page
type Mode string

const (
	Idle            Mode = "idle"
	AddModalOpen    Mode = "add-modal-open"
	RecipeInputOpen Mode = "recipe-input-open"
	Generating      Mode = "generating"
	RecipeShown     Mode = "recipe-shown"
)

// Alert messages shown to the user
const (
	AlertDuplicateName    = "An ingredient with this name already exists."
	AlertGenerationFailed = "Failed to generate recipe. Please try again."
)

var (
	ErrInvalidTransition    = errors.New("invalid view transition")
	ErrGenerationInProgress = errors.New("recipe generation already in progress")
	ErrNotEditing           = errors.New("no ingredient is being edited")
)

// Draft is the unsaved edit of one pantry card
type Draft struct {
	Original string
	Name     string
	Count    int
}

// Session is the view state of one signed-in user. At most one card is in
// edit mode at a time.
type Session struct {
	Mode     Mode
	Editing  *Draft
	Guidance string
	Recipe   string
	alert    string
}

// NewSession returns a session with no modal open
func NewSession() *Session {
	return &Session{Mode: Idle}
}

func (s *Session) transition(from, to Mode) error {
	if s.Mode != from {
		return ErrInvalidTransition
	}
	s.Mode = to
	return nil
}

// OpenAddModal shows the add-ingredient form
func (s *Session) OpenAddModal() error {
	return s.transition(Idle, AddModalOpen)
}

// CloseAddModal hides the add-ingredient form after submit or cancel
func (s *Session) CloseAddModal() error {
	return s.transition(AddModalOpen, Idle)
}

// OpenRecipeInput shows the guidance form for recipe generation
func (s *Session) OpenRecipeInput() error {
	return s.transition(Idle, RecipeInputOpen)
}

// CloseRecipeInput dismisses the guidance form without generating
func (s *Session) CloseRecipeInput() error {
	return s.transition(RecipeInputOpen, Idle)
}

// BeginGeneration closes the guidance form and marks a generation in flight.
// A second call while one is running fails with ErrGenerationInProgress.
func (s *Session) BeginGeneration(guidance string) error {
	if s.Mode == Generating {
		return ErrGenerationInProgress
	}
	if err := s.transition(RecipeInputOpen, Generating); err != nil {
		return err
	}
	s.Guidance = strings.TrimSpace(guidance)
	s.Recipe = ""
	return nil
}

// CompleteGeneration shows the generated recipe
func (s *Session) CompleteGeneration(recipe string) error {
	if err := s.transition(Generating, RecipeShown); err != nil {
		return err
	}
	s.Recipe = recipe
	return nil
}

// FailGeneration returns to the pantry with an alert
func (s *Session) FailGeneration() error {
	if err := s.transition(Generating, Idle); err != nil {
		return err
	}
	s.alert = AlertGenerationFailed
	return nil
}

// CloseRecipe dismisses the recipe
func (s *Session) CloseRecipe() error {
	if err := s.transition(RecipeShown, Idle); err != nil {
		return err
	}
	s.Recipe = ""
	return nil
}

// BeginEdit puts a card into edit mode with the stored values as the draft,
// replacing any other unsaved draft
func (s *Session) BeginEdit(name string, count int) error {
	if s.Mode != Idle {
		return ErrInvalidTransition
	}
	s.Editing = &Draft{Original: name, Name: name, Count: count}
	return nil
}

// UpdateDraft changes the draft of the card being edited
func (s *Session) UpdateDraft(name string, count int) error {
	if s.Editing == nil {
		return ErrNotEditing
	}
	s.Editing.Name = name
	s.Editing.Count = count
	return nil
}

// CancelEdit discards the draft
func (s *Session) CancelEdit() {
	s.Editing = nil
}

// FinishEdit leaves edit mode after the draft was saved
func (s *Session) FinishEdit() {
	s.Editing = nil
}

// RejectEdit keeps the card in edit mode and shows an alert
func (s *Session) RejectEdit(alert string) {
	s.alert = alert
}

// EditingName reports the stored name of the card in edit mode, if any
func (s *Session) EditingName() (string, bool) {
	if s.Editing == nil {
		return "", false
	}
	return s.Editing.Original, true
}

// SetAlert queues a message for the next render
func (s *Session) SetAlert(msg string) {
	s.alert = msg
}

// TakeAlert returns the pending alert and clears it
func (s *Session) TakeAlert() string {
	msg := s.alert
	s.alert = ""
	return msg
}

// Snapshot is a read-only copy of a session used for rendering
type Snapshot struct {
	Mode     Mode
	Editing  *Draft
	Guidance string
	Recipe   string
	Alert    string
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		Mode:     s.Mode,
		Guidance: s.Guidance,
		Recipe:   s.Recipe,
		Alert:    s.alert,
	}
	if s.Editing != nil {
		d := *s.Editing
		snap.Editing = &d
	}
	return snap
}
