package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisstore "github.com/openprobity/crosswalk/internal/adapters/redis"
	"github.com/openprobity/crosswalk/pkg/domain"
	"github.com/openprobity/crosswalk/pkg/schema"
)

func newStore(t *testing.T, opts ...redisstore.Option) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redisstore.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func testCrosswalk(t *testing.T, name string) *domain.Crosswalk {
	t.Helper()
	source := schema.New("raw", schema.Field{Name: "a", Type: schema.TypeString})
	dest := schema.New("clean", schema.Field{Name: "b", Type: schema.TypeString})
	cw := domain.NewCrosswalk(name, source, dest)
	require.NoError(t, cw.AppendScript("RENAME > 'b' < 'a'"))
	return cw
}

func TestStore_CrosswalkRoundTrip(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	cw := testCrosswalk(t, "survey")
	require.NoError(t, store.SaveCrosswalk(ctx, cw))

	loaded, err := store.LoadCrosswalk(ctx, "survey")
	require.NoError(t, err)
	assert.Equal(t, cw.ID, loaded.ID)
	require.Len(t, loaded.Actions, 1)
	assert.Equal(t, "RENAME > 'b' < 'a'", loaded.Actions[0].String())
}

func TestStore_SchemaRoundTrip(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	sc := schema.New("raw", schema.Field{Name: "a", Type: schema.TypeString})
	require.NoError(t, store.SaveSchema(ctx, sc))

	loaded, err := store.LoadSchema(ctx, "raw")
	require.NoError(t, err)
	assert.Equal(t, sc.ID, loaded.ID)
}

func TestStore_TransformRoundTrip(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	tr := domain.NewTransform(testCrosswalk(t, "survey"), "aaa", "bbb")
	require.NoError(t, store.SaveTransform(ctx, tr))

	loaded, err := store.LoadTransform(ctx, "survey")
	require.NoError(t, err)
	assert.Equal(t, tr.ID, loaded.ID)
	assert.Equal(t, "aaa", loaded.SourceChecksum)
}

func TestStore_NotFound(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.LoadCrosswalk(context.Background(), "absent")
	assert.ErrorIs(t, err, domain.ErrDefinitionNotFound)
}

func TestStore_EmptyNameRejected(t *testing.T) {
	store, _ := newStore(t)
	err := store.SaveSchema(context.Background(), schema.New(""))
	assert.Error(t, err)
}

func TestStore_List(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSchema(ctx, schema.New("raw", schema.Field{Name: "a", Type: schema.TypeString})))
	require.NoError(t, store.SaveSchema(ctx, schema.New("clean", schema.Field{Name: "a", Type: schema.TypeString})))

	names, err := store.List(ctx, "schema")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"raw", "clean"}, names)

	names, err = store.List(ctx, "crosswalk")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStore_TTLExpiry(t *testing.T) {
	store, mr := newStore(t, redisstore.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.SaveSchema(ctx, schema.New("raw", schema.Field{Name: "a", Type: schema.TypeString})))
	_, err := store.LoadSchema(ctx, "raw")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.LoadSchema(ctx, "raw")
	assert.ErrorIs(t, err, domain.ErrDefinitionNotFound)
}

func TestStore_KeyPrefix(t *testing.T) {
	store, mr := newStore(t, redisstore.WithPrefix("custom:"))
	ctx := context.Background()

	require.NoError(t, store.SaveSchema(ctx, schema.New("raw", schema.Field{Name: "a", Type: schema.TypeString})))
	assert.True(t, mr.Exists("custom:schema:raw"))
	assert.True(t, mr.Exists("custom:schema:index"))
}
