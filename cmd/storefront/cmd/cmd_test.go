package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-storefront-client/internal/backendtest"
	"github.com/jrsteele09/go-storefront-client/internal/config"
	"github.com/jrsteele09/go-storefront-client/services"
	"github.com/jrsteele09/go-storefront-client/sessions/filestore"
	"github.com/jrsteele09/go-storefront-client/sessions/memstore"
	"github.com/jrsteele09/go-storefront-client/users"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append(args, "-q"))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setupEnv(t *testing.T) *backendtest.Backend {
	t.Helper()
	b := backendtest.Start(t)
	_, err := b.SeedUser(users.User{ID: "u1", Name: "Ana", Email: "ana@example.com"}, "Sup3rSecret")
	require.NoError(t, err)

	t.Setenv("API_BASE_URL", b.URL)
	t.Setenv("SESSION_STORAGE", "file")
	t.Setenv("STATE_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_PRETTY", "false")
	return b
}

func TestSessionSurvivesAcrossInvocations(t *testing.T) {
	b := setupEnv(t)

	out, err := run(t, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "Not signed in")

	out, err = run(t, "login", "-e", "ana@example.com", "-p", "Sup3rSecret")
	require.NoError(t, err)
	require.Contains(t, out, "Signed in as Ana (customer)")

	out, err = run(t, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "Ana <ana@example.com> role=customer")

	b.ExpireAccessTokens()
	out, err = run(t, "cart", "add", "p2", "-n", "2")
	require.NoError(t, err)
	require.Contains(t, out, "Mouse")
	require.Equal(t, 1, b.RefreshCalls())

	out, err = run(t, "orders")
	require.NoError(t, err)
	require.Contains(t, out, "No orders yet")

	out, err = run(t, "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Signed out")

	_, err = run(t, "cart")
	require.Error(t, err)
	require.Contains(t, err.Error(), "redirected to /login")
}

func TestRevokedSessionAsksForLogin(t *testing.T) {
	b := setupEnv(t)
	_, err := run(t, "login", "-e", "ana@example.com", "-p", "Sup3rSecret")
	require.NoError(t, err)

	b.ExpireAccessTokens()
	b.RevokeRefreshTokens()
	_, err = run(t, "profile")
	require.Error(t, err)
	require.Contains(t, err.Error(), "session expired")

	out, err := run(t, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "Not signed in")
}

func TestProductsIsPublic(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "products", "-s", "laptop")
	require.NoError(t, err)
	require.Contains(t, out, "Laptop")
	require.NotContains(t, out, "Mouse")
}

func TestVersionNeedsNoConfig(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	out, err := run(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "storefront "+Version)
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	s, closer, err := openStorage(ctx, config.Storage{Backend: config.BackendMemory})
	require.NoError(t, err)
	require.IsType(t, &memstore.MemStore{}, s)
	require.NoError(t, closer())

	s, _, err = openStorage(ctx, config.Storage{Backend: config.BackendFile, StateDir: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &filestore.FileStore{}, s)

	_, _, err = openStorage(ctx, config.Storage{Backend: "tape"})
	require.ErrorContains(t, err, "unknown session storage")
}

func TestPersistentJarRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := memstore.New()
	b := backendtest.Start(t)

	jar, err := newPersistentJar(ctx, storage, b.URL)
	require.NoError(t, err)
	_, found, err := storage.Get(ctx, CookiesKey)
	require.NoError(t, err)
	require.False(t, found)

	jar.SetCookies(jar.base, []*http.Cookie{{Name: backendtest.RefreshCookie, Value: "r1"}})
	reloaded, err := newPersistentJar(ctx, storage, b.URL+"/api")
	require.NoError(t, err)
	cookies := reloaded.Cookies(reloaded.base)
	require.Len(t, cookies, 1)
	require.Equal(t, "r1", cookies[0].Value)

	reloaded.SetCookies(reloaded.base, []*http.Cookie{{Name: backendtest.RefreshCookie, Value: "", MaxAge: -1}})
	_, found, err = storage.Get(ctx, CookiesKey)
	require.NoError(t, err)
	require.False(t, found)
}

func TestPersistentJarKeepsPathAndExpiry(t *testing.T) {
	ctx := context.Background()
	storage := memstore.New()
	b := backendtest.Start(t)
	refreshURL, err := url.Parse(b.URL + backendtest.RouteRefresh)
	require.NoError(t, err)
	cartURL, err := url.Parse(b.URL + backendtest.RouteCart)
	require.NoError(t, err)

	jar, err := newPersistentJar(ctx, storage, b.URL)
	require.NoError(t, err)
	jar.SetCookies(refreshURL, []*http.Cookie{
		{Name: backendtest.RefreshCookie, Value: "r1", Path: backendtest.RouteRefresh, MaxAge: 3600},
		{Name: "stale", Value: "x", Path: "/", Expires: time.Now().Add(-time.Hour)},
		{Name: backendtest.AccessCookie, Value: "a1", Path: "/", MaxAge: 60},
	})

	reloaded, err := newPersistentJar(ctx, storage, b.URL)
	require.NoError(t, err)

	names := func(u *url.URL) []string {
		var out []string
		for _, c := range reloaded.Cookies(u) {
			out = append(out, c.Name)
		}
		return out
	}
	require.ElementsMatch(t, []string{backendtest.AccessCookie}, names(cartURL))
	require.ElementsMatch(t, []string{backendtest.AccessCookie, backendtest.RefreshCookie}, names(refreshURL))

	saved := reloaded.saved[cookieID(backendtest.RefreshCookie, backendtest.RouteRefresh)]
	require.WithinDuration(t, time.Now().Add(time.Hour), saved.Expires, time.Minute)

	// An entry whose expiry passed while the process was down is dropped.
	reloaded.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	reloaded.SetCookies(cartURL, nil)
	again, err := newPersistentJar(ctx, storage, b.URL)
	require.NoError(t, err)
	require.NotContains(t, again.saved, cookieID(backendtest.AccessCookie, "/"))
	require.Contains(t, again.saved, cookieID(backendtest.RefreshCookie, backendtest.RouteRefresh))
}

func TestPrintCart(t *testing.T) {
	var out bytes.Buffer
	printCart(&out, &services.Cart{Items: []services.CartItem{}})
	require.Equal(t, "Cart is empty\n", out.String())

	out.Reset()
	printCart(&out, &services.Cart{
		Items:         []services.CartItem{{ID: "p1", Name: "Laptop", Price: 10, Quantity: 3}},
		TotalQuantity: 3,
		TotalPrice:    30,
	})
	require.Contains(t, out.String(), "Laptop")
	require.Contains(t, out.String(), "30.00")
}
