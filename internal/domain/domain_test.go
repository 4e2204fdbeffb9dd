package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for raw, want := range map[string]Mode{"on": ModeOn, "OFF": ModeOff, " on ": ModeOn} {
		got, err := ParseMode(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
	for _, raw := range []string{"", "1", "true", "of f"} {
		_, err := ParseMode(raw)
		assert.ErrorIs(t, err, ErrInvalidMode, raw)
	}
	assert.Equal(t, ModeOff, ModeOn.Opposite())
	assert.Equal(t, ModeOn, ModeOff.Opposite())
	assert.Equal(t, ModeOn, ModeOf(true))
}

func TestBlockedError(t *testing.T) {
	var err error = &BlockedError{Code: BlockedCode, Message: "Airplane Mode is enabled", URL: "https://x.org"}
	wrapped := fmt.Errorf("fetch: %w", err)

	assert.ErrorIs(t, wrapped, ErrAirplaneModeEnabled)
	assert.False(t, errors.Is(errors.New("other"), ErrAirplaneModeEnabled))
	assert.Equal(t, "airplane_mode_enabled: Airplane Mode is enabled (https://x.org)", err.Error())
}

func TestPrincipalCan(t *testing.T) {
	var nobody *Principal
	assert.False(t, nobody.Can(CapManageOptions))
	assert.False(t, (&Principal{Scopes: map[string]bool{CapManageOptions: true}}).Can(CapManageOptions), "empty user id")
	assert.True(t, (&Principal{UserID: "1", Scopes: map[string]bool{CapManageOptions: true}}).Can(CapManageOptions))
	assert.False(t, (&Principal{UserID: "1"}).Can(CapManageOptions))
}
