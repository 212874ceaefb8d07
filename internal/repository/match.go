package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gridtoe/internal/apperror"
	"github.com/rocketscienceinc/gridtoe/internal/entity"
)

const (
	matchKeyPrefix = "match:"
	// maxUpdateAttempts - how many times Update replays fn when the match changes under it.
	maxUpdateAttempts = 5
)

// MatchRepository - storage for live matches only; finished matches are deleted, not archived.
type MatchRepository interface {
	CreateOrUpdate(ctx context.Context, match *entity.Match) error
	GetByID(ctx context.Context, id string) (*entity.Match, error)
	DeleteByID(ctx context.Context, id string) error
	// Update - loads the match, applies fn and stores the result atomically. A finished match is deleted.
	// fn is replayed on a fresh copy if the match changed meanwhile; an error from fn stores nothing.
	Update(ctx context.Context, id string, fn func(match *entity.Match) error) error
}

type dbMatch struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMatchRepository - ttl of 0 keeps matches until they are deleted.
func NewMatchRepository(client *redis.Client, ttl time.Duration) MatchRepository {
	return &dbMatch{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbMatch) CreateOrUpdate(ctx context.Context, match *entity.Match) error {
	matchJSON, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("could not marshal match: %w", err)
	}

	if err = that.client.Set(ctx, matchKeyPrefix+match.ID, matchJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set match: %w", err)
	}

	return nil
}

func (that *dbMatch) GetByID(ctx context.Context, id string) (*entity.Match, error) {
	return getMatch(ctx, that.client, id)
}

// matchReader - a plain client or a client inside a watched transaction.
type matchReader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getMatch(ctx context.Context, client matchReader, id string) (*entity.Match, error) {
	response, err := client.Get(ctx, matchKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrMatchNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get match by id: %w", err)
	}

	var existingMatch entity.Match
	if err = json.Unmarshal(response, &existingMatch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}

	return &existingMatch, nil
}

func (that *dbMatch) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, matchKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete match by id: %w", err)
	}

	if deleted == 0 {
		return fmt.Errorf("%w: %s", apperror.ErrMatchNotFound, id)
	}

	return nil
}

func (that *dbMatch) Update(ctx context.Context, id string, fn func(match *entity.Match) error) error {
	key := matchKeyPrefix + id

	txf := func(tx *redis.Tx) error {
		match, err := getMatch(ctx, tx, id)
		if err != nil {
			return err
		}

		if err = fn(match); err != nil {
			return err
		}

		matchJSON, err := json.Marshal(match)
		if err != nil {
			return fmt.Errorf("could not marshal match: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if match.IsFinished() {
				pipe.Del(ctx, key)
				return nil
			}

			pipe.Set(ctx, key, matchJSON, that.ttl)
			return nil
		})

		return err
	}

	for range maxUpdateAttempts {
		err := that.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}

	return fmt.Errorf("%w: %s", apperror.ErrConcurrentUpdate, id)
}
