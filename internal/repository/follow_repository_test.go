package repository

import (
	"context"
	"errors"
	"testing"
)

func TestFollowToggleCreatesEdgeAndCounters(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	repo := NewFollowRepo(db)

	outcome, err := repo.Toggle(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if outcome != ToggleCreated {
		t.Fatalf("outcome = %v, want %v", outcome, ToggleCreated)
	}

	users := NewUserRepo(db)
	target, _ := users.GetByID(context.Background(), alice.ID)
	actor, _ := users.GetByID(context.Background(), bob.ID)
	if target.Followers != 1 {
		t.Errorf("target followers = %d, want 1", target.Followers)
	}
	if actor.Following != 1 {
		t.Errorf("actor following = %d, want 1", actor.Following)
	}
	if n := countRows(t, db, "follower"); n != 1 {
		t.Errorf("follower rows = %d, want 1", n)
	}
}

func TestFollowToggleRoundTripRestoresState(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	repo := NewFollowRepo(db)

	if _, err := repo.Toggle(context.Background(), alice.ID, bob.ID); err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	outcome, err := repo.Toggle(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if outcome != ToggleRemoved {
		t.Fatalf("outcome = %v, want %v", outcome, ToggleRemoved)
	}

	users := NewUserRepo(db)
	target, _ := users.GetByID(context.Background(), alice.ID)
	actor, _ := users.GetByID(context.Background(), bob.ID)
	if target.Followers != 0 || actor.Following != 0 {
		t.Errorf("counters after round trip = %d/%d, want 0/0", target.Followers, actor.Following)
	}
	if n := countRows(t, db, "follower"); n != 0 {
		t.Errorf("follower rows = %d, want 0", n)
	}
}

func TestFollowToggleReciprocal(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	repo := NewFollowRepo(db)

	// both directions of the edge, so the counter updates run through both
	// lock orderings (target id below and above the follower id)
	if _, err := repo.Toggle(context.Background(), alice.ID, bob.ID); err != nil {
		t.Fatalf("bob follows alice: %v", err)
	}
	if _, err := repo.Toggle(context.Background(), bob.ID, alice.ID); err != nil {
		t.Fatalf("alice follows bob: %v", err)
	}

	users := NewUserRepo(db)
	a, _ := users.GetByID(context.Background(), alice.ID)
	b, _ := users.GetByID(context.Background(), bob.ID)
	if a.Followers != 1 || a.Following != 1 {
		t.Errorf("alice counters = %d/%d, want 1/1", a.Followers, a.Following)
	}
	if b.Followers != 1 || b.Following != 1 {
		t.Errorf("bob counters = %d/%d, want 1/1", b.Followers, b.Following)
	}
	if n := countRows(t, db, "follower"); n != 2 {
		t.Errorf("follower rows = %d, want 2", n)
	}
}

func TestFollowToggleSelf(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")

	_, err := NewFollowRepo(db).Toggle(context.Background(), alice.ID, alice.ID)
	if !errors.Is(err, ErrSelfAction) {
		t.Fatalf("self toggle error = %v, want ErrSelfAction", err)
	}
	if n := countRows(t, db, "follower"); n != 0 {
		t.Errorf("follower rows = %d, want 0", n)
	}
}

func TestFollowToggleMissingTarget(t *testing.T) {
	db := newTestDB(t)
	bob := createTestUser(t, db, "bob")

	_, err := NewFollowRepo(db).Toggle(context.Background(), 9999, bob.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("toggle on missing user error = %v, want ErrNotFound", err)
	}
	// nothing may leak out of the rolled back transaction
	if n := countRows(t, db, "follower"); n != 0 {
		t.Errorf("follower rows = %d, want 0", n)
	}
	actor, _ := NewUserRepo(db).GetByID(context.Background(), bob.ID)
	if actor.Following != 0 {
		t.Errorf("actor following = %d, want 0", actor.Following)
	}
}

func TestFollowExists(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	repo := NewFollowRepo(db)

	ok, err := repo.Exists(context.Background(), alice.ID, bob.ID)
	if err != nil || ok {
		t.Fatalf("exists before toggle = %v, %v; want false, nil", ok, err)
	}
	if _, err := repo.Toggle(context.Background(), alice.ID, bob.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	ok, err = repo.Exists(context.Background(), alice.ID, bob.ID)
	if err != nil || !ok {
		t.Fatalf("exists after toggle = %v, %v; want true, nil", ok, err)
	}
}
