package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerobugdebug/link-catalog-bot/internal/catalog"
)

func TestResolveSubcategory(t *testing.T) {
	store := NewStore(time.Hour)

	sess := store.Create("U1", "pagos")
	v0 := store.AddSubcategory(sess, 0, "Pago")
	v1 := store.AddSubcategory(sess, 1, "Otros")

	assert.Equal(t, sess.ID+"|subcat_0", v0)

	got, name, err := store.ResolveSubcategory(v1, "U1")
	require.NoError(t, err)
	assert.Equal(t, "Otros", name)
	assert.Equal(t, "pagos", got.Category)
	assert.Equal(t, "Otros", got.Subcategory)
}

func TestSessionsAreIsolated(t *testing.T) {
	store := NewStore(time.Hour)

	a := store.Create("U1", "pagos")
	va := store.AddSubcategory(a, 0, "Pago")

	b := store.Create("U2", "documentos")
	store.AddSubcategory(b, 0, "Formularios")

	_, name, err := store.ResolveSubcategory(va, "U1")
	require.NoError(t, err)
	assert.Equal(t, "Pago", name, "a second flow must not overwrite the first")
}

func TestResolveRejectsStaleValues(t *testing.T) {
	store := NewStore(time.Hour)
	sess := store.Create("U1", "pagos")
	valid := store.AddSubcategory(sess, 0, "Pago")

	tests := []struct {
		name   string
		value  string
		userID string
	}{
		{name: "other user", value: valid, userID: "U2"},
		{name: "unknown session", value: "nope|subcat_0", userID: "U1"},
		{name: "unknown key", value: sess.ID + "|subcat_9", userID: "U1"},
		{name: "malformed", value: "subcat_0", userID: "U1"},
		{name: "empty", value: "", userID: "U1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := store.ResolveSubcategory(tt.value, tt.userID)
			assert.ErrorIs(t, err, ErrStale)
		})
	}
}

func TestResolveLink(t *testing.T) {
	store := NewStore(time.Hour)
	sess := store.Create("U1", "pagos")
	store.AddLink(sess, 0, catalog.Entry{URL: "https://a.example"})
	v := store.AddLink(sess, 1, catalog.Entry{URL: "https://b.example"})

	got, entry, err := store.ResolveLink(v, "U1")
	require.NoError(t, err)
	assert.Equal(t, "https://b.example", entry.URL)
	assert.Equal(t, sess.ID, got.ID)

	_, _, err = store.ResolveLink(sess.ID+"|link_7", "U1")
	assert.ErrorIs(t, err, ErrStale)
}

func TestExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(time.Minute)
	store.now = func() time.Time { return now }

	sess := store.Create("U1", "pagos")
	v := store.AddSubcategory(sess, 0, "Pago")
	store.Create("U2", "pagos")

	now = now.Add(2 * time.Minute)

	_, _, err := store.ResolveSubcategory(v, "U1")
	assert.ErrorIs(t, err, ErrStale)
	assert.Equal(t, 1, store.Count(), "resolving an expired session evicts it")

	assert.Equal(t, 1, store.CleanupExpired())
	assert.Zero(t, store.Count())
}

func TestDelete(t *testing.T) {
	store := NewStore(0)
	sess := store.Create("U1", "pagos")
	v := store.AddSubcategory(sess, 0, "Pago")

	store.Delete(sess.ID)

	_, _, err := store.ResolveSubcategory(v, "U1")
	assert.ErrorIs(t, err, ErrStale)
	assert.Zero(t, store.Count())
}

func TestStartStop(t *testing.T) {
	store := NewStore(time.Hour)
	store.Start()
	store.Stop()
}

func TestStopIsIdempotent(t *testing.T) {
	store := NewStore(time.Hour)
	store.Start()

	assert.NotPanics(t, func() {
		store.Stop()
		store.Stop()
	})

	assert.NotPanics(t, store.Start, "a stopped store does not restart eviction")
}
