/* matches.go
 * Contains the methods for interacting with the matches collection
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"llaves-bot/api/shared"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListMatches returns every match of a cycle ordered by round then id
func (s *Store) ListMatches(ctx context.Context, cycle shared.Cycle) ([]shared.Match, error) {
	opts := options.Find().SetSort(bson.D{{Key: "round", Value: 1}, {Key: "_id", Value: 1}})
	return s.findMatches(ctx, bson.M{"cycle": cycle}, opts)
}

// GetMatchesInRound returns the matches of one round ordered by id
func (s *Store) GetMatchesInRound(ctx context.Context, cycle shared.Cycle, round int) ([]shared.Match, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return s.findMatches(ctx, bson.M{"cycle": cycle, "round": round}, opts)
}

// GetMatch returns a single match
// Preconditions: Receives the persisted match id
// Postconditions: Returns the match, shared.ErrMatchNotFound if there is no such id, or a store error
func (s *Store) GetMatch(ctx context.Context, matchID int64) (shared.Match, error) {
	var record MatchRecord
	err := s.Collections.Matches.FindOne(ctx, bson.M{"_id": matchID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return shared.Match{}, fmt.Errorf("%w: %d", shared.ErrMatchNotFound, matchID)
		}
		return shared.Match{}, unavailable("get match", err)
	}

	teams, err := s.teamsByID(ctx, teamIDs([]MatchRecord{record}))
	if err != nil {
		return shared.Match{}, err
	}
	return ToMatch(record, teams), nil
}

// UpsertMatch writes the slot (cycle, round, position). An existing row keeps its id, a missing one is inserted
// with the next id from the counters collection.
// Preconditions: Receives the slot identity and the fields to write
// Postconditions: Returns the stored match, or a store error
func (s *Store) UpsertMatch(ctx context.Context, cycle shared.Cycle, round int, position int, fields shared.MatchFields) (shared.Match, error) {
	filter := bson.M{"cycle": cycle, "round": round, "bracket_position": position}

	var existing MatchRecord
	err := s.Collections.Matches.FindOne(ctx, filter).Decode(&existing)
	notFound := errors.Is(err, mongo.ErrNoDocuments)
	if err != nil && !notFound {
		return shared.Match{}, unavailable("find slot", err)
	}

	if notFound {
		id, err := s.nextMatchID(ctx)
		if err != nil {
			return shared.Match{}, err
		}
		record := NewMatchRecord(id, cycle, round, position, fields)
		if _, err := s.Collections.Matches.InsertOne(ctx, record); err != nil {
			return shared.Match{}, unavailable("insert match", err)
		}
		return s.GetMatch(ctx, id)
	}

	update := bson.M{"$set": bson.M{
		"team1_id":     fields.Team1ID,
		"team2_id":     fields.Team2ID,
		"winner_id":    fields.WinnerID,
		"is_bye":       fields.IsBye,
		"team1_sets":   fields.Team1Sets,
		"team2_sets":   fields.Team2Sets,
		"score":        fields.Score,
		"completed_at": fields.CompletedAt,
	}}
	if _, err := s.Collections.Matches.UpdateOne(ctx, bson.M{"_id": existing.ID}, update); err != nil {
		return shared.Match{}, unavailable("update slot", err)
	}
	return s.GetMatch(ctx, existing.ID)
}

// UpdateMatchResult writes the result columns of a match
// Preconditions: Receives the persisted match id and the result
// Postconditions: Returns the updated match, shared.ErrMatchNotFound if there is no such id, or a store error
func (s *Store) UpdateMatchResult(ctx context.Context, matchID int64, fields shared.ResultFields) (shared.Match, error) {
	update := bson.M{"$set": bson.M{
		"winner_id":    fields.WinnerID,
		"team1_sets":   fields.Team1Sets,
		"team2_sets":   fields.Team2Sets,
		"score":        fields.Score,
		"completed_at": fields.CompletedAt,
	}}
	res, err := s.Collections.Matches.UpdateOne(ctx, bson.M{"_id": matchID}, update)
	if err != nil {
		return shared.Match{}, unavailable("update result", err)
	}
	if res.MatchedCount == 0 {
		return shared.Match{}, fmt.Errorf("%w: %d", shared.ErrMatchNotFound, matchID)
	}
	return s.GetMatch(ctx, matchID)
}

// InsertRound stores the slots of a round in order
// Preconditions: Receives the cycle, the round and the slots in bracket order
// Postconditions: Returns the stored matches in the same order, or a store error
func (s *Store) InsertRound(ctx context.Context, cycle shared.Cycle, round int, slots []shared.MatchFields) ([]shared.Match, error) {
	if len(slots) == 0 {
		return nil, nil
	}

	docs := make([]interface{}, 0, len(slots))
	for i, fields := range slots {
		id, err := s.nextMatchID(ctx)
		if err != nil {
			return nil, err
		}
		docs = append(docs, NewMatchRecord(id, cycle, round, i, fields))
	}
	if _, err := s.Collections.Matches.InsertMany(ctx, docs); err != nil {
		return nil, unavailable("insert round", err)
	}
	return s.GetMatchesInRound(ctx, cycle, round)
}

// DeleteMatches removes every match of a cycle
func (s *Store) DeleteMatches(ctx context.Context, cycle shared.Cycle) (int64, error) {
	res, err := s.Collections.Matches.DeleteMany(ctx, bson.M{"cycle": cycle})
	if err != nil {
		return 0, unavailable("delete matches", err)
	}
	return res.DeletedCount, nil
}

func (s *Store) findMatches(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]shared.Match, error) {
	cursor, err := s.Collections.Matches.Find(ctx, filter, opts)
	if err != nil {
		return nil, unavailable("find matches", err)
	}
	defer cursor.Close(ctx)

	var records []MatchRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, unavailable("decode matches", err)
	}

	teams, err := s.teamsByID(ctx, teamIDs(records))
	if err != nil {
		return nil, err
	}
	matches := make([]shared.Match, 0, len(records))
	for _, r := range records {
		matches = append(matches, ToMatch(r, teams))
	}
	return matches, nil
}

// nextMatchID increments the matches counter and returns the new value
func (s *Store) nextMatchID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var c counter
	err := s.Collections.Counters.FindOneAndUpdate(ctx, bson.M{"_id": "matches"}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&c)
	if err != nil {
		return 0, unavailable("next match id", err)
	}
	return c.Seq, nil
}
