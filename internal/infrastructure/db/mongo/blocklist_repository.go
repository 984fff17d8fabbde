package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pairline/matching-system/internal/core/domain"
)

const collectionBlocklist = "blocklist_pairs"

// blocklistDoc is the persisted shape of a never-pair-again entry. The
// canonical pair key doubles as the document id, which makes the
// uniqueness constraint structural rather than index-enforced.
type blocklistDoc struct {
	Key       string    `bson:"_id"`
	UserA     string    `bson:"user_a"`
	UserB     string    `bson:"user_b"`
	CreatedAt time.Time `bson:"created_at"`
}

// BlocklistRepository stores permanently excluded pairings.
type BlocklistRepository struct {
	col *mongo.Collection
}

func NewBlocklistRepository(db *mongo.Database) *BlocklistRepository {
	return &BlocklistRepository{col: db.Collection(collectionBlocklist)}
}

// Insert upserts the pair. Re-inserting an existing pair is a no-op, so
// retries and replayed resolutions stay idempotent.
func (r *BlocklistRepository) Insert(ctx context.Context, pair domain.Pair) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := blocklistDoc{
		Key:       pair.Key(),
		UserA:     pair.A,
		UserB:     pair.B,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": doc.Key},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	return err
}

// LoadAll returns every stored pair for cache warming.
func (r *BlocklistRepository) LoadAll(ctx context.Context) ([]domain.Pair, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pairs []domain.Pair
	for cursor.Next(ctx) {
		var doc blocklistDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		pairs = append(pairs, domain.Pair{A: doc.UserA, B: doc.UserB})
	}
	return pairs, cursor.Err()
}
