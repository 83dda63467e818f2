package stubs

import (
	"context"
	"testing"

	"tgbots/internal/models"
)

func TestMockDB_Sessions(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	if err := db.Initialize(ctx); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	session, err := db.GetSession(ctx, "42")
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if session != nil {
		t.Fatal("Expected no session for a new user")
	}

	err = db.PutSession(ctx, models.Session{UserID: "42", Stage: "psych", Step: 1, Payload: map[string]string{"psych_q1": "Стиль"}})
	if err != nil {
		t.Fatalf("Failed to put session: %v", err)
	}

	// Replace semantics: the second put drops keys that are not present anymore
	err = db.PutSession(ctx, models.Session{UserID: "42", Stage: "idle", Payload: map[string]string{}})
	if err != nil {
		t.Fatalf("Failed to put session: %v", err)
	}

	session, err = db.GetSession(ctx, "42")
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if session.Stage != "idle" || session.Step != 0 {
		t.Errorf("Expected idle#0, got %s#%d", session.Stage, session.Step)
	}
	if len(session.Payload) != 0 {
		t.Errorf("Expected empty payload, got %v", session.Payload)
	}
	if db.SessionCount() != 1 {
		t.Errorf("Expected exactly one session row, got %d", db.SessionCount())
	}
}

func TestMockDB_SessionPayloadIsCopied(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	payload := map[string]string{"city": "Москва"}
	if err := db.PutSession(ctx, models.Session{UserID: "1", Stage: "ask_dest", Payload: payload}); err != nil {
		t.Fatalf("Failed to put session: %v", err)
	}
	payload["city"] = "Казань"

	session, _ := db.GetSession(ctx, "1")
	if session.Payload["city"] != "Москва" {
		t.Errorf("Expected stored payload to be isolated from caller, got %q", session.Payload["city"])
	}
}

func TestMockDB_Users(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	if err := db.UpsertUser(ctx, models.User{ID: "7", Username: "anna"}); err != nil {
		t.Fatalf("Failed to upsert user: %v", err)
	}
	if err := db.UpsertUser(ctx, models.User{ID: "7", Username: "renamed"}); err != nil {
		t.Fatalf("Failed to upsert user: %v", err)
	}
	if err := db.SetUserGender(ctx, "7", models.GenderFemale); err != nil {
		t.Fatalf("Failed to set gender: %v", err)
	}

	user, err := db.GetUser(ctx, "7")
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if user.Username != "anna" {
		t.Errorf("Expected first username to be kept, got %q", user.Username)
	}
	if user.Gender != models.GenderFemale {
		t.Errorf("Expected female, got %q", user.Gender)
	}
	if user.CreatedAt.IsZero() {
		t.Error("Expected creation time to be set")
	}
}

func TestMockDB_ProfilesAndWardrobe(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	profile, err := db.GetProfile(ctx, "1")
	if err != nil || profile != nil {
		t.Fatalf("Expected no profile, got %v, %v", profile, err)
	}

	answers := map[string]string{"psych_q1": "Ситуативно"}
	if err := db.SaveProfile(ctx, models.Profile{UserID: "1", Answers: answers}); err != nil {
		t.Fatalf("Failed to save profile: %v", err)
	}
	profile, _ = db.GetProfile(ctx, "1")
	if profile.Answers["psych_q1"] != "Ситуативно" {
		t.Errorf("Unexpected answers: %v", profile.Answers)
	}

	items := []models.WardrobeItem{
		{UserID: "1", Category: "base", Name: "белая футболка"},
		{UserID: "2", Category: "base", Name: "чужая вещь"},
		{UserID: "1", Category: "shoes", Name: "кеды"},
	}
	if err := db.AddWardrobeItems(ctx, items); err != nil {
		t.Fatalf("Failed to add items: %v", err)
	}

	wardrobe, err := db.ListWardrobe(ctx, "1")
	if err != nil {
		t.Fatalf("Failed to list wardrobe: %v", err)
	}
	if len(wardrobe) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(wardrobe))
	}
	if wardrobe[0].Name != "белая футболка" || wardrobe[1].Name != "кеды" {
		t.Errorf("Expected insertion order, got %v", wardrobe)
	}
}
