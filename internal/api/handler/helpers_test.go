package handler_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wastelink/wastelink/internal/auth"
	"github.com/wastelink/wastelink/internal/domain"
	"github.com/wastelink/wastelink/internal/identity"
	"github.com/wastelink/wastelink/internal/navigation"
	"github.com/wastelink/wastelink/internal/profile"
	"github.com/wastelink/wastelink/internal/session"
	"github.com/wastelink/wastelink/internal/shell"
)

const waitFor = 2 * time.Second
const tick = 5 * time.Millisecond

// profileTable resolves uids to roles. Unknown uids have no profile document.
type profileTable map[string]profile.Role

func (p profileTable) FetchProfile(_ context.Context, uid string) (*profile.Record, error) {
	role, ok := p[uid]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return &profile.Record{UID: uid, Role: role}, nil
}

// credentialTable maps email to password and uid.
type credentialTable map[string][2]string

func (c credentialTable) Authenticate(_ context.Context, email, password string) (string, error) {
	cred, ok := c[email]
	if !ok || cred[0] != password {
		return "", auth.ErrInvalidCredentials
	}
	return cred[1], nil
}

type fixture struct {
	source      *identity.Broadcaster
	gate        *session.Gate
	shell       *shell.Shell
	composition *domain.Composition
	manifest    *navigation.Manifest
}

func newFixture(t *testing.T, profiles profileTable) *fixture {
	t.Helper()

	manifest, err := navigation.DefaultManifest()
	require.NoError(t, err)

	src := identity.NewBroadcaster()
	g := session.NewGate(src, profiles)
	c := domain.NewComposition()
	sh := shell.New(g, manifest, c)
	require.NoError(t, sh.Start(context.Background()))

	t.Cleanup(func() {
		g.Dispose()
		_ = sh.Stop(context.Background())
	})

	return &fixture{source: src, gate: g, shell: sh, composition: c, manifest: manifest}
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decodeEnvelope(t, w)
	errObj, ok := env["error"].(map[string]any)
	require.True(t, ok, "response has no error object: %s", w.Body.String())
	return errObj["code"].(string)
}
