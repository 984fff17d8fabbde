package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pairline/matching-system/internal/core/domain"
)

const collectionResolvedMatches = "resolved_matches"

// archivedVote is one participant's recorded vote in the archive document.
type archivedVote struct {
	VoterID string `bson:"voter_id"`
	Vote    string `bson:"vote"`
}

// archivedMatch is the audit record of a resolved match.
type archivedMatch struct {
	MatchID             string         `bson:"match_id"`
	UserA               string         `bson:"user_a"`
	UserB               string         `bson:"user_b"`
	Outcome             string         `bson:"outcome"`
	Votes               []archivedVote `bson:"votes"`
	VoteWindowStartedAt time.Time      `bson:"vote_window_started_at"`
	VoteWindowExpiresAt time.Time      `bson:"vote_window_expires_at"`
	ResolvedAt          time.Time      `bson:"resolved_at"`
}

// MatchArchive persists resolved matches for audit and analytics. The live
// coordinator never reads this collection back.
type MatchArchive struct {
	col *mongo.Collection
}

func NewMatchArchive(db *mongo.Database) *MatchArchive {
	return &MatchArchive{col: db.Collection(collectionResolvedMatches)}
}

// ArchiveResolved inserts one audit document for the resolved match.
func (a *MatchArchive) ArchiveResolved(ctx context.Context, m *domain.Match, outcome domain.Outcome) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := archivedMatch{
		MatchID:             m.ID,
		UserA:               m.Pair.A,
		UserB:               m.Pair.B,
		Outcome:             string(outcome),
		VoteWindowStartedAt: m.VoteWindowStartedAt,
		VoteWindowExpiresAt: m.VoteWindowExpiresAt,
		ResolvedAt:          time.Now().UTC(),
	}
	for voter, vote := range m.Votes {
		doc.Votes = append(doc.Votes, archivedVote{VoterID: voter, Vote: string(vote)})
	}

	_, err := a.col.InsertOne(ctx, doc)
	return err
}

// EnsureIndexes creates the lookup indexes used by offline analytics.
func (a *MatchArchive) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "match_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_a", Value: 1}}},
		{Keys: bson.D{{Key: "user_b", Value: 1}}},
		{Keys: bson.D{{Key: "resolved_at", Value: -1}}},
	}

	_, err := a.col.Indexes().CreateMany(ctx, indexes)
	return err
}
