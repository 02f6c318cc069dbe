package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"chatrelay/model"
	"chatrelay/service"

	"github.com/openai/openai-go"
)

// fakeCompleter records every request and replies with canned text.
type fakeCompleter struct {
	mu       sync.Mutex
	requests [][]openai.ChatCompletionMessageParamUnion
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, messages)
	return fmt.Sprintf("reply-%d", len(f.requests)), nil
}

func (f *fakeCompleter) lastRequest() []openai.ChatCompletionMessageParamUnion {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func decodeTurns(t *testing.T, messages []openai.ChatCompletionMessageParamUnion) []model.Turn {
	t.Helper()
	turns := make([]model.Turn, 0, len(messages))
	for _, m := range messages {
		param, ok := m.(openai.ChatCompletionMessageParam)
		if !ok {
			t.Fatalf("unexpected message param type %T", m)
		}
		content, ok := param.Content.Value.(string)
		if !ok {
			t.Fatalf("unexpected content type %T", param.Content.Value)
		}
		turns = append(turns, model.Turn{Role: string(param.Role.Value), Content: content})
	}
	return turns
}

func TestLiveSessionIncrementalSend(t *testing.T) {
	completer := &fakeCompleter{}
	registry := service.NewSessionRegistry()
	sess := registry.GetOrCreate("u1/c1", nil)

	reply, err := sess.Send(context.Background(), completer, "hello")
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if reply != "reply-1" {
		t.Fatalf("unexpected reply: %s", reply)
	}

	if _, err := sess.Send(context.Background(), completer, "and again"); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	got := decodeTurns(t, completer.lastRequest())
	want := []model.Turn{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "reply-1"},
		{Role: "user", Content: "and again"},
	}
	if len(got) != len(want) {
		t.Fatalf("request length: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("turn %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

// A session rehydrated from stored history must produce the same request
// for the next turn as a session that has been live the whole time.
func TestReplayedSessionMatchesContinuousSession(t *testing.T) {
	continuous := &fakeCompleter{}
	liveRegistry := service.NewSessionRegistry()
	live := liveRegistry.GetOrCreate("u1/c1", nil)

	if _, err := live.Send(context.Background(), continuous, "first"); err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if _, err := live.Send(context.Background(), continuous, "second"); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	// same prefix replayed from the store after a restart
	replayed := &fakeCompleter{}
	freshRegistry := service.NewSessionRegistry()
	rehydrated := freshRegistry.GetOrCreate("u1/c1", []model.Turn{
		{Role: model.RoleUser, Content: "first"},
		{Role: model.RoleModel, Content: "reply-1"},
	})
	if _, err := rehydrated.Send(context.Background(), replayed, "second"); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	gotLive := decodeTurns(t, continuous.lastRequest())
	gotReplayed := decodeTurns(t, replayed.lastRequest())
	if len(gotLive) != len(gotReplayed) {
		t.Fatalf("request lengths differ: live %d replayed %d", len(gotLive), len(gotReplayed))
	}
	for i := range gotLive {
		if gotLive[i] != gotReplayed[i] {
			t.Fatalf("turn %d differs: live %+v replayed %+v", i, gotLive[i], gotReplayed[i])
		}
	}
}

func TestSendFailureLeavesContextUntouched(t *testing.T) {
	registry := service.NewSessionRegistry()
	sess := registry.GetOrCreate("u1/c1", []model.Turn{
		{Role: model.RoleUser, Content: "first"},
		{Role: model.RoleModel, Content: "a reply"},
	})

	failing := &fakeCompleter{err: errors.New("quota exceeded")}
	if _, err := sess.Send(context.Background(), failing, "second"); err == nil {
		t.Fatal("expected error from failing completer")
	}

	if got := len(sess.Turns()); got != 2 {
		t.Fatalf("failed send must not record turns, got %d", got)
	}
}
