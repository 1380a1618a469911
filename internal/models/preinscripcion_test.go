package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransitionsTable(t *testing.T) {
	assert.True(t, CanTransition(StatePending, StateEnrolled))
	assert.True(t, CanTransition(StatePending, StateRejected))

	assert.False(t, CanTransition(StateEnrolled, StatePending))
	assert.False(t, CanTransition(StateEnrolled, StateRejected))
	assert.False(t, CanTransition(StateRejected, StateEnrolled))
	assert.False(t, CanTransition(StatePending, StatePending))
	assert.False(t, CanTransition(State("PAGADO"), StateEnrolled))
}

func TestValidState(t *testing.T) {
	assert.True(t, ValidState(StatePending))
	assert.True(t, ValidState(StateEnrolled))
	assert.True(t, ValidState(StateRejected))
	assert.False(t, ValidState(State("PAGADO")))
	assert.False(t, ValidState(State("")))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(StatePending))
	assert.True(t, IsTerminal(StateEnrolled))
	assert.True(t, IsTerminal(StateRejected))
}

func TestEditableRequiresPendingAndOpenWindow(t *testing.T) {
	p := Preinscripcion{CanModify: true, State: StatePending}
	assert.True(t, p.Editable())

	p.CanModify = false
	assert.False(t, p.Editable())

	p.CanModify = true
	p.State = StateEnrolled
	assert.False(t, p.Editable())
}

func TestAge(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	p := Preinscripcion{BirthDate: time.Date(2007, 3, 15, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 19, p.Age(now))

	p.BirthDate = time.Date(2007, 10, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 18, p.Age(now))

	p.BirthDate = now.AddDate(1, 0, 0)
	assert.Equal(t, 0, p.Age(now))
}

func TestFullName(t *testing.T) {
	p := Preinscripcion{GivenNames: "MARIA ELENA", PaternalSurname: "QUISPE", MaternalSurname: "MAMANI"}
	assert.Equal(t, "MARIA ELENA QUISPE MAMANI", p.FullName())
}
