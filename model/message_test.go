package model_test

import (
	"fmt"
	"testing"
	"time"

	"chatrelay/model"
	"chatrelay/platform"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	platform.DB = db
	model.InstallDB()
}

func TestAppendAndLoadHistoryOrder(t *testing.T) {
	setupTestDB(t)

	for i, content := range []string{"hello", "hi there", "how are you"} {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleModel
		}
		if err := model.AppendMessage("c1", role, content); err != nil {
			t.Fatalf("AppendMessage err: %v", err)
		}
	}

	history, err := model.LoadHistory("c1")
	if err != nil {
		t.Fatalf("LoadHistory err: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(history))
	}

	want := []model.Turn{
		{Role: model.RoleUser, Content: "hello"},
		{Role: model.RoleModel, Content: "hi there"},
		{Role: model.RoleUser, Content: "how are you"},
	}
	for i, turn := range history {
		if turn != want[i] {
			t.Fatalf("turn %d: got %+v want %+v", i, turn, want[i])
		}
	}
}

func TestLoadHistoryEmptyConversation(t *testing.T) {
	setupTestDB(t)

	history, err := model.LoadHistory("never-seen")
	if err != nil {
		t.Fatalf("LoadHistory err: %v", err)
	}
	if history == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d turns", len(history))
	}
}

func TestLoadHistoryOrdersByTimestampThenId(t *testing.T) {
	setupTestDB(t)

	early := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	late := early.Add(time.Second)

	// equal timestamps fall back to insertion (id) order
	rows := []model.Message{
		{ChatId: "c1", Role: model.RoleModel, Content: "second", CreatedAt: late},
		{ChatId: "c1", Role: model.RoleUser, Content: "first", CreatedAt: early},
		{ChatId: "c1", Role: model.RoleUser, Content: "third", CreatedAt: late},
	}
	for i := range rows {
		if err := platform.DB.Create(&rows[i]).Error; err != nil {
			t.Fatalf("insert row %d: %v", i, err)
		}
	}

	history, err := model.LoadHistory("c1")
	if err != nil {
		t.Fatalf("LoadHistory err: %v", err)
	}

	got := make([]string, 0, len(history))
	for _, turn := range history {
		got = append(got, turn.Content)
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v want %v", i, got, want)
		}
	}
}

func TestLoadHistoryScopedToConversation(t *testing.T) {
	setupTestDB(t)

	if err := model.AppendMessage("c1", model.RoleUser, "for c1"); err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}
	if err := model.AppendMessage("c2", model.RoleUser, "for c2"); err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}

	history, err := model.LoadHistory("c1")
	if err != nil {
		t.Fatalf("LoadHistory err: %v", err)
	}
	if len(history) != 1 || history[0].Content != "for c1" {
		t.Fatalf("unexpected history: %+v", history)
	}
}
