package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/airplane-mode/internal/audit"
	"github.com/xela07ax/airplane-mode/internal/domain"
	"github.com/xela07ax/airplane-mode/internal/i18n"
	"github.com/xela07ax/airplane-mode/internal/nonce"
	"github.com/xela07ax/airplane-mode/internal/store"
)

type brokenStore struct{}

var errStoreDown = errors.New("store down")

func (brokenStore) Get(context.Context, string) (string, bool, error) { return "", false, errStoreDown }
func (brokenStore) Set(context.Context, string, string) error         { return errStoreDown }
func (brokenStore) Add(context.Context, string, string) (bool, error) { return false, errStoreDown }
func (brokenStore) Delete(context.Context, string) error              { return errStoreDown }

type recordingAuditor struct{ events []audit.Event }

func (r *recordingAuditor) Log(e audit.Event) { r.events = append(r.events, e) }

func newTestGate(t *testing.T, opts ...Option) (*Gate, *store.Memory) {
	t.Helper()
	settings := store.NewMemory()
	return NewGate(settings, nonce.NewMemory(0), zap.NewNop(), opts...), settings
}

func setMode(t *testing.T, s store.SettingsStore, m domain.Mode) {
	t.Helper()
	require.NoError(t, s.Set(context.Background(), domain.SettingKey, string(m)))
}

func TestGate_EnabledDefaultsOn(t *testing.T) {
	ctx := context.Background()
	g, settings := newTestGate(t)

	assert.True(t, g.Enabled(ctx), "absent setting means on")

	setMode(t, settings, domain.ModeOff)
	assert.False(t, g.Enabled(ctx))

	setMode(t, settings, domain.ModeOn)
	assert.True(t, g.Enabled(ctx))

	// Только точное "on" включает режим
	require.NoError(t, settings.Set(ctx, domain.SettingKey, "yes"))
	assert.False(t, g.Enabled(ctx))
}

func TestGate_StoreErrorFallsBackToDefault(t *testing.T) {
	m := NewMetrics(nil)
	g := NewGate(brokenStore{}, nonce.NewMemory(0), zap.NewNop(), WithMetrics(m))

	assert.True(t, g.Enabled(context.Background()))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StoreErrors))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Mode))
}

func TestGate_DecideNetwork(t *testing.T) {
	ctx := context.Background()
	rec := &recordingAuditor{}
	g, settings := newTestGate(t, WithAuditor(rec))

	err := g.DecideNetwork(ctx, "https://api.wordpress.org/core/version-check/")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAirplaneModeEnabled)

	var be *domain.BlockedError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "airplane_mode_enabled", be.Code)
	assert.Equal(t, "Airplane Mode is enabled", be.Message)

	require.Len(t, rec.events, 1)
	assert.Equal(t, audit.KindBlocked, rec.events[0].Kind)
	assert.Equal(t, string(domain.HookNetwork), rec.events[0].Hook)

	assert.NoError(t, g.DecideNetwork(ctx, "http://localhost/wp-cron.php"))
	assert.NoError(t, g.DecideNetwork(ctx, "http://127.0.0.1:8080/x"))
	assert.NoError(t, g.DecideNetwork(ctx, "/relative/path"))
	assert.NoError(t, g.DecideNetwork(ctx, "http://[::1"), "malformed url fails open")

	setMode(t, settings, domain.ModeOff)
	assert.NoError(t, g.DecideNetwork(ctx, "https://api.wordpress.org/"))
}

func TestGate_DecideNetworkTranslated(t *testing.T) {
	g, _ := newTestGate(t, WithTranslator(i18n.Load("ru")))

	var be *domain.BlockedError
	require.ErrorAs(t, g.DecideNetwork(context.Background(), "https://example.com"), &be)
	assert.Equal(t, "Режим полёта включён", be.Message)
	assert.Equal(t, domain.BlockedCode, be.Code)
}

func TestGate_DecideAsset(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics(nil)
	g, settings := newTestGate(t, WithMetrics(m))

	src, ok := g.DecideAsset(ctx, "https://fonts.googleapis.com/css?family=Open+Sans")
	assert.False(t, ok)
	assert.Empty(t, src)

	src, ok = g.DecideAsset(ctx, "http://localhost/wp-includes/css/dashicons.css")
	assert.True(t, ok)
	assert.Equal(t, "http://localhost/wp-includes/css/dashicons.css", src)

	setMode(t, settings, domain.ModeOff)
	src, ok = g.DecideAsset(ctx, "https://fonts.googleapis.com/css")
	assert.True(t, ok)
	assert.Equal(t, "https://fonts.googleapis.com/css", src)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Decisions.WithLabelValues("asset", "DENY")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Decisions.WithLabelValues("asset", "ALLOW")))
}

func TestGate_DecideAvatar(t *testing.T) {
	ctx := context.Background()
	g, settings := newTestGate(t)
	req := domain.AvatarRequest{
		Markup: `<img src="https://secure.gravatar.com/avatar/abc?s=96" />`,
		Size:   96,
		Alt:    `Jane "JD" Doe`,
	}

	got := g.DecideAvatar(ctx, req)
	assert.Equal(t,
		`<img src="`+DefaultAvatar+`" class="avatar avatar-96 photo" height="96" width="96" alt="Jane &#34;JD&#34; Doe" />`,
		got)

	setMode(t, settings, domain.ModeOff)
	assert.Equal(t, req.Markup, g.DecideAvatar(ctx, req), "disabled gate returns markup unchanged")
}

func TestGate_DecideAvatarOverride(t *testing.T) {
	g, _ := newTestGate(t, WithAvatarSource(func(context.Context) string {
		return "/img/blank.png"
	}))
	got := g.DecideAvatar(context.Background(), domain.AvatarRequest{Size: 32})
	assert.Equal(t, `<img src="/img/blank.png" class="avatar avatar-32 photo" height="32" width="32" alt="" />`, got)

	g, _ = newTestGate(t, WithAvatarSource(func(context.Context) string { return "" }))
	assert.Contains(t, g.DecideAvatar(context.Background(), domain.AvatarRequest{Size: 32}), DefaultAvatar)
}

type mockScheduler struct{ mock.Mock }

func (m *mockScheduler) RemoveAction(hook, callback string) error {
	return m.Called(hook, callback).Error(0)
}

func (m *mockScheduler) ClearScheduledHook(hook string) error {
	return m.Called(hook).Error(0)
}

func TestGate_DecideUpdateJobs(t *testing.T) {
	ctx := context.Background()
	g, settings := newTestGate(t)

	sched := &mockScheduler{}
	for _, a := range UpdateActions {
		sched.On("RemoveAction", a.Hook, a.Callback).Return(nil).Twice()
	}
	for _, h := range UpdateCronHooks {
		sched.On("ClearScheduledHook", h).Return(nil).Twice()
	}

	require.NoError(t, g.DecideUpdateJobs(ctx, sched))
	require.NoError(t, g.DecideUpdateJobs(ctx, sched), "idempotent")
	sched.AssertExpectations(t)
	sched.AssertNumberOfCalls(t, "RemoveAction", 20)
	sched.AssertNumberOfCalls(t, "ClearScheduledHook", 8)

	setMode(t, settings, domain.ModeOff)
	idle := &mockScheduler{}
	require.NoError(t, g.DecideUpdateJobs(ctx, idle))
	idle.AssertNotCalled(t, "RemoveAction", mock.Anything, mock.Anything)
	idle.AssertNotCalled(t, "ClearScheduledHook", mock.Anything)
}

func TestGate_DecideUpdateJobsPlan(t *testing.T) {
	g, _ := newTestGate(t)
	plan := &SuppressionPlan{}
	require.NoError(t, g.DecideUpdateJobs(context.Background(), plan))

	assert.Len(t, plan.Actions, 10)
	assert.Contains(t, plan.Actions, domain.HookAction{Hook: "admin_init", Callback: "_maybe_update_core"})
	assert.Equal(t, []string{"wp_update_themes", "wp_update_plugins", "wp_version_check", "wp_maybe_auto_update"}, plan.Cleared)
}

func TestGate_DecideUpdateJobsSchedulerError(t *testing.T) {
	g, _ := newTestGate(t)
	sched := &mockScheduler{}
	sched.On("RemoveAction", mock.Anything, mock.Anything).Return(nil)
	sched.On("ClearScheduledHook", "wp_version_check").Return(errors.New("cron locked"))
	sched.On("ClearScheduledHook", mock.Anything).Return(nil)

	err := g.DecideUpdateJobs(context.Background(), sched)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wp_version_check")
	sched.AssertNumberOfCalls(t, "ClearScheduledHook", 4)
}

func TestGate_InstallUninstall(t *testing.T) {
	ctx := context.Background()
	g, settings := newTestGate(t)

	require.NoError(t, g.Install(ctx))
	v, ok, err := settings.Get(ctx, domain.SettingKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "on", v)

	// Повторная установка не перетирает выбор пользователя
	setMode(t, settings, domain.ModeOff)
	require.NoError(t, g.Install(ctx))
	assert.False(t, g.Enabled(ctx))

	require.NoError(t, g.Uninstall(ctx))
	_, ok, err = settings.Get(ctx, domain.SettingKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, g.Enabled(ctx), "default on after uninstall")

	require.NoError(t, g.Install(ctx))
	assert.True(t, g.Enabled(ctx))
}

func TestGate_InstallStoreError(t *testing.T) {
	g := NewGate(brokenStore{}, nonce.NewMemory(0), zap.NewNop())
	assert.ErrorIs(t, g.Install(context.Background()), errStoreDown)
	assert.ErrorIs(t, g.Uninstall(context.Background()), errStoreDown)
}

func TestGate_ToggleStylesheet(t *testing.T) {
	g, _ := newTestGate(t)
	ctx := context.Background()

	_, ok := g.ToggleStylesheet(ctx, domain.View{})
	assert.False(t, ok)

	asset, ok := g.ToggleStylesheet(ctx, domain.View{Admin: true})
	require.True(t, ok)
	assert.Equal(t, domain.Asset{Handle: "airplane-mode", URL: "lib/css/airplane-mode.min.css", Version: "1.1.0"}, asset)

	_, ok = g.ToggleStylesheet(ctx, domain.View{AdminBarShowing: true})
	assert.True(t, ok)

	g, _ = newTestGate(t, WithStylesheetURL("/static/airplane-mode.min.css"))
	asset, _ = g.ToggleStylesheet(ctx, domain.View{Admin: true})
	assert.Equal(t, "/static/airplane-mode.min.css", asset.URL)
}
