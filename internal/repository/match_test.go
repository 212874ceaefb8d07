package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gridtoe/internal/apperror"
	"github.com/rocketscienceinc/gridtoe/internal/entity"
	"github.com/rocketscienceinc/gridtoe/testing/suite"
)

func newTestMatch(t *testing.T, id string) *entity.Match {
	t.Helper()

	match, err := entity.NewMatch(id, entity.MatchConfig{
		Width:             4,
		Length:            3,
		WinningLineAmount: 3,
		SearchDepthLimit:  2,
	}, entity.OwnerSideA, entity.OwnerSideB)
	require.NoError(t, err)

	return match
}

func TestMatchRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	matchRepo := NewMatchRepository(st.Storage, time.Minute)

	// Given: a fresh match
	match := newTestMatch(t, "123")

	// When: CreateOrUpdate is called
	err := matchRepo.CreateOrUpdate(ctx, match)

	// Then: no error should be returned, and the key expires
	require.NoError(t, err)

	ttl, err := st.Storage.TTL(ctx, "match:123").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
}

func TestMatchRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, 0)

		// Given: a match with a couple of moves on a rectangular grid
		match := newTestMatch(t, "123")
		require.NoError(t, match.Grid.Set(3, 2, entity.OwnerSideA))
		require.NoError(t, match.Grid.Set(0, 1, entity.OwnerSideB))
		match.Turns = 2

		err := matchRepo.CreateOrUpdate(ctx, match)
		require.NoError(t, err)

		// When: GetByID is called with existing ID
		retrievedMatch, err := matchRepo.GetByID(ctx, match.ID)

		// Then: the retrieved match should match the saved one
		require.NoError(t, err)
		assert.Equal(t, match, retrievedMatch)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, 0)

		// When: GetByID is called with non-existent ID
		retrievedMatch, err := matchRepo.GetByID(ctx, "9999999")

		// Then: an ErrMatchNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrMatchNotFound)
		assert.Nil(t, retrievedMatch)
	})
}

func TestMatchRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, 0)

		// Given: a stored match
		match := newTestMatch(t, "123")
		require.NoError(t, matchRepo.CreateOrUpdate(ctx, match))

		// When: DeleteByID is called with existing ID
		err := matchRepo.DeleteByID(ctx, match.ID)

		// Then: no error should be returned and the match is gone
		require.NoError(t, err)

		_, err = matchRepo.GetByID(ctx, match.ID)
		require.ErrorIs(t, err, apperror.ErrMatchNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, 0)

		// When: DeleteByID is called with non-existent ID
		err := matchRepo.DeleteByID(ctx, "9999999")

		// Then: an ErrMatchNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrMatchNotFound)
	})
}

func TestMatchRepository_Update(t *testing.T) {
	t.Run("Update_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, time.Minute)

		// Given: a stored match
		match := newTestMatch(t, "123")
		require.NoError(t, matchRepo.CreateOrUpdate(ctx, match))

		// When: a move is applied through Update
		err := matchRepo.Update(ctx, match.ID, func(match *entity.Match) error {
			match.Grid.Put(entity.Cell{X: 1, Y: 1}, entity.OwnerSideB)
			match.Turns++
			return nil
		})

		// Then: the change is stored
		require.NoError(t, err)

		stored, err := matchRepo.GetByID(ctx, match.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.OwnerSideB, stored.Grid.At(1, 1))
		assert.Equal(t, 1, stored.Turns)
	})

	t.Run("Update_FinishedMatchIsDeleted", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, time.Minute)

		match := newTestMatch(t, "123")
		require.NoError(t, matchRepo.CreateOrUpdate(ctx, match))

		err := matchRepo.Update(ctx, match.ID, func(match *entity.Match) error {
			match.Status = entity.DrawnStatus()
			return nil
		})
		require.NoError(t, err)

		_, err = matchRepo.GetByID(ctx, match.ID)
		require.ErrorIs(t, err, apperror.ErrMatchNotFound)
	})

	t.Run("Update_AbortedByCallback", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, time.Minute)

		match := newTestMatch(t, "123")
		require.NoError(t, matchRepo.CreateOrUpdate(ctx, match))

		// When: the callback rejects the change after touching the copy
		err := matchRepo.Update(ctx, match.ID, func(match *entity.Match) error {
			match.Turns = 42
			return apperror.ErrCellOccupied
		})

		// Then: the error comes back and nothing is stored
		require.ErrorIs(t, err, apperror.ErrCellOccupied)

		stored, err := matchRepo.GetByID(ctx, match.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stored.Turns)
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, time.Minute)

		err := matchRepo.Update(ctx, "9999999", func(*entity.Match) error {
			t.Fatal("callback must not run for a missing match")
			return nil
		})
		require.ErrorIs(t, err, apperror.ErrMatchNotFound)
	})

	t.Run("Update_ReplayedAfterConcurrentChange", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, time.Minute)

		// Given: a stored match
		match := newTestMatch(t, "123")
		require.NoError(t, matchRepo.CreateOrUpdate(ctx, match))

		// When: another update commits while the first one is still working on its copy
		calls := 0
		err := matchRepo.Update(ctx, match.ID, func(match *entity.Match) error {
			calls++
			if calls == 1 {
				require.NoError(t, matchRepo.Update(ctx, match.ID, func(other *entity.Match) error {
					other.Turns++
					return nil
				}))
			}

			match.Turns++
			return nil
		})

		// Then: the first update is replayed on the newer state and no change is lost
		require.NoError(t, err)
		assert.Equal(t, 2, calls)

		stored, err := matchRepo.GetByID(ctx, match.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, stored.Turns)
	})
}
