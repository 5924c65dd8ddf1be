package backfill

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/patient-portal/internal/api"
	"github.com/carelink/patient-portal/internal/cache"
)

func newDoctorStore(docs ...api.Doctor) *cache.Store[api.Doctor] {
	s := cache.New[api.Doctor]()
	for _, d := range docs {
		s.Upsert(d)
	}
	return s
}

func TestEnsureFetchesOnlyMissing(t *testing.T) {
	store := newDoctorStore(api.Doctor{ID: "d1", UserID: "u1"})

	var fetched []string
	c := New("doctors", store, func(ctx context.Context, ref string) error {
		fetched = append(fetched, ref)
		store.Upsert(api.Doctor{ID: "d-" + ref, UserID: ref})
		return nil
	}, nil, nil)

	issued := c.Ensure(context.Background(), []string{"u1", "u2", "u1"})

	assert.Equal(t, []string{"u2"}, issued)
	assert.Equal(t, []string{"u2"}, fetched)
}

func TestEnsureEmptyPrimaryListNoFetches(t *testing.T) {
	store := newDoctorStore()

	c := New("doctors", store, func(ctx context.Context, ref string) error {
		t.Fatal("no fetch expected for an empty primary list")
		return nil
	}, nil, nil)

	assert.Empty(t, c.Ensure(context.Background(), nil))
	assert.Empty(t, c.Ensure(context.Background(), []string{}))
}

func TestEnsureIdempotentAcrossPasses(t *testing.T) {
	store := newDoctorStore()

	var calls int
	c := New("doctors", store, func(ctx context.Context, ref string) error {
		calls++
		store.Upsert(api.Doctor{ID: "d-" + ref, UserID: ref})
		return nil
	}, nil, nil)

	refs := []string{"u1", "u2"}
	first := c.Ensure(context.Background(), refs)
	assert.Len(t, first, 2)

	// second pass: everything resolved, nothing fetched
	second := c.Ensure(context.Background(), refs)
	assert.Empty(t, second)
	assert.Equal(t, 2, calls)
}

func TestEnsureIsolatesPerRefFailures(t *testing.T) {
	store := newDoctorStore()

	c := New("doctors", store, func(ctx context.Context, ref string) error {
		if ref == "u-gone" {
			return errors.New("doctor not found")
		}
		store.Upsert(api.Doctor{ID: "d-" + ref, UserID: ref})
		return nil
	}, nil, nil)

	issued := c.Ensure(context.Background(), []string{"u-gone", "u2"})
	assert.Equal(t, []string{"u2"}, issued)

	// the unresolvable ref stays missing; it is fetched again next pass
	// rather than tracked as permanently failed
	again := c.Ensure(context.Background(), []string{"u-gone", "u2"})
	assert.Empty(t, again)
	_, ok := store.Resolve("u2")
	require.True(t, ok)
}

func TestEnsureDualKeyPreventsRefetch(t *testing.T) {
	// record cached under its record id must satisfy an owner-id reference
	store := newDoctorStore(api.Doctor{ID: "u5-as-record-id", UserID: "u5"})

	c := New("doctors", store, func(ctx context.Context, ref string) error {
		t.Fatalf("unexpected fetch for %s", ref)
		return nil
	}, nil, nil)

	assert.Empty(t, c.Ensure(context.Background(), []string{"u5", "u5-as-record-id"}))
}
