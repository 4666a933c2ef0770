/* test_helpers.go
 * Contains test helper functions for store package tests
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"llaves-bot/api/shared"
)

// CreateTestStore creates a Store connected to a test database.
// Returns the store and a cleanup function that drops the database and disconnects.
func CreateTestStore(ctx context.Context, mongoURI string) (*Store, func(), error) {
	store, err := NewStore(ctx, "test_llaves", mongoURI)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Client.Ping(ctx, nil); err != nil {
		store.Client.Disconnect(ctx)
		return nil, nil, unavailable("ping", err)
	}
	// Start from an empty database
	store.Database.Drop(ctx)

	cleanup := func() {
		if store.Client != nil {
			store.Database.Drop(context.TODO())
			store.Client.Disconnect(context.TODO())
		}
	}
	return store, cleanup, nil
}

// CreateSampleTeams returns a small basico roster for testing
func CreateSampleTeams() []shared.Team {
	return []shared.Team{
		{Name: "Los Tigres", Course: "1ro A", Cycle: shared.CycleBasico},
		{Name: "Halcones", Course: "1ro B", Cycle: shared.CycleBasico},
		{Name: "Pumas", Course: "2do A", Cycle: shared.CycleBasico},
		{Name: "Cóndores", Course: "2do B", Cycle: shared.CycleBasico},
		{Name: "Zorros", Course: "3ro C", Cycle: shared.CycleBasico},
	}
}

// PairSlots builds round 1 slots from consecutive teams, leaving a bye for an odd last team
func PairSlots(teams []shared.Team) []shared.MatchFields {
	var slots []shared.MatchFields
	for i := 0; i < len(teams); i += 2 {
		slot := shared.MatchFields{Team1ID: shared.TeamRef(teams[i].ID)}
		if i+1 < len(teams) {
			slot.Team2ID = shared.TeamRef(teams[i+1].ID)
		} else {
			slot.IsBye = true
			slot.WinnerID = shared.TeamRef(teams[i].ID)
		}
		slots = append(slots, slot)
	}
	return slots
}
