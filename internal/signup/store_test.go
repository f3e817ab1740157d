package signup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Roundtrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	state := NewState("flow-1")
	state.Step = StepPayment
	state.OTPVerified = true
	state.Form = FormData{Email: "jane@example.com", Password: "secret-password"}
	state.SessionID = "sess_42"

	require.NoError(t, store.Save(state))

	loaded, err := store.Load("flow-1")
	require.NoError(t, err)
	assert.Equal(t, StepPayment, loaded.Step)
	assert.True(t, loaded.OTPVerified)
	assert.Equal(t, "jane@example.com", loaded.Form.Email)
	assert.Equal(t, "sess_42", loaded.SessionID)
}

func TestFileStore_LoadMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nope")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestFileStore_DeleteIsIdempotent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(NewState("flow-1")))
	require.NoError(t, store.Delete("flow-1"))
	require.NoError(t, store.Delete("flow-1"))

	_, err = store.Load("flow-1")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestFileStore_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(NewState("flow-1")))

	// В состоянии лежит пароль, файл должен быть только для владельца
	info, err := os.Stat(filepath.Join(dir, "flow-1.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestState_AdvanceIsForwardOnly(t *testing.T) {
	state := NewState("flow-1")

	order := []Step{StepForm, StepOTP, StepPayment, StepOnboarding, StepDashboard}
	for i, step := range order {
		assert.Equal(t, step, state.Step, "position %d", i)
		state.advance()
	}
	// Конечный шаг: advance больше ничего не делает
	assert.Equal(t, StepDashboard, state.Step)
}
