package handlers

import (
	"io"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"chartridge/services"
	"chartridge/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noGeo struct{}

func (noGeo) CountryForIP(ip string) string { return "" }

type silentNotifier struct{}

func (silentNotifier) Notify(title, body, link string) {}

func newTestApp(st store.Store) *fiber.App {
	app := fiber.New()
	registerService := &services.RegisterService{
		Store:      st,
		Geo:        noGeo{},
		Notifier:   silentNotifier{},
		NotifyMode: services.NotifyMilestone,
	}
	SetupTrackingRoutes(app, services.NewTrackService(st), registerService)
	return app
}

func get(t *testing.T, app *fiber.App, url string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", url, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestTrackEndpointRecordsCheckpoint(t *testing.T) {
	st := store.NewMemoryStore()
	app := newTestApp(st)

	status, _ := get(t, app, "/track?game=flappy&id=abcdef&checkpoint=mid")
	assert.Equal(t, fiber.StatusNoContent, status)

	rows, err := st.ListSessionCheckpoints("flappy", "abcdef")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestTrackEndpointMissingParamsWritesNothing(t *testing.T) {
	st := store.NewMemoryStore()
	app := newTestApp(st)

	for _, url := range []string{
		"/track",
		"/track?checkpoint=mid",
		"/track?game=flappy&checkpoint=mid",
		"/track?id=abcdef&checkpoint=mid",
	} {
		status, body := get(t, app, url)
		assert.Equal(t, fiber.StatusNoContent, status)
		assert.Empty(t, body)
	}

	rows, err := st.ListCheckpoints("flappy")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTrackEndpointIncrementFlags(t *testing.T) {
	st := store.NewMemoryStore()
	app := newTestApp(st)

	get(t, app, "/track?game=flappy&id=abcdef&increment=coins&by=3")
	get(t, app, "/track?game=flappy&id=abcdef&increment=coins&by=2&decrease")

	rows, err := st.ListSessionIncrements("flappy", "abcdef")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].Value)

	get(t, app, "/track?game=flappy&id=abcdef&increment=coins&set=5")
	get(t, app, "/track?game=flappy&id=abcdef&increment=coins&set=5")

	rows, _ = st.ListSessionIncrements("flappy", "abcdef")
	require.Len(t, rows, 1)
	assert.Equal(t, int64(5), rows[0].Value)
}

func TestTrackEndpointDatumUpsert(t *testing.T) {
	st := store.NewMemoryStore()
	app := newTestApp(st)

	get(t, app, "/track?game=flappy&id=abcdef&data=weapon&value=sword")
	get(t, app, "/track?game=flappy&id=abcdef&data=weapon&value=bow")

	rows, err := st.ListSessionData("flappy", "abcdef")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "bow", rows[0].Value)
}

var registerBodyPattern = regexp.MustCompile(`^[a-z]{6},[a-z]{6}$`)

func TestRegisterEndpointRoundTrip(t *testing.T) {
	st := store.NewMemoryStore()
	app := newTestApp(st)

	// First contact: server generates both tokens and returns them.
	status, body := get(t, app, "/register?game=flappy")
	assert.Equal(t, fiber.StatusOK, status)
	require.Regexp(t, registerBodyPattern, body)
	playerID := strings.Split(body, ",")[1]

	countBefore, err := st.CountPlayers("flappy")
	require.NoError(t, err)
	assert.Equal(t, int64(1), countBefore)

	// Returning player: session token alone, playcount unchanged.
	status, body = get(t, app, "/register?game=flappy&player="+playerID)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Regexp(t, `^[a-z]{6}$`, body)

	countAfter, err := st.CountPlayers("flappy")
	require.NoError(t, err)
	assert.Equal(t, countBefore, countAfter)
}

func TestRegisterEndpointRequiresGame(t *testing.T) {
	st := store.NewMemoryStore()
	app := newTestApp(st)

	status, body := get(t, app, "/register")
	assert.Equal(t, fiber.StatusNoContent, status)
	assert.Empty(t, body)

	sessions, err := st.ListSessions("")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
