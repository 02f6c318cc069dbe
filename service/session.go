package service

import (
	"context"
	"sync"

	"chatrelay/model"

	"github.com/openai/openai-go"
)

// apiRole maps the stored role to the completion API's role vocabulary.
func apiRole(role string) openai.ChatCompletionMessageParamRole {
	if role == model.RoleModel {
		return openai.ChatCompletionMessageParamRoleAssistant
	}
	return openai.ChatCompletionMessageParamRole(role)
}

func turnParam(role openai.ChatCompletionMessageParamRole, content string) openai.ChatCompletionMessageParamUnion {
	var c any = content
	return openai.ChatCompletionMessageParam{
		Role:    openai.F(role),
		Content: openai.F(c),
	}
}

// LiveSession is the in-memory handle to a conversation's accumulated
// completion context. It is never persisted; after a restart the
// registry rehydrates it from the store. Its turn list must stay equal
// to the prefix of messages durably stored for the conversation.
type LiveSession struct {
	mu    sync.Mutex
	turns []openai.ChatCompletionMessageParamUnion
}

// newLiveSession replays the stored history into a fresh context.
func newLiveSession(history []model.Turn) *LiveSession {
	turns := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	for _, t := range history {
		turns = append(turns, turnParam(apiRole(t.Role), t.Content))
	}
	return &LiveSession{turns: turns}
}

// Send submits one incremental user turn on top of the accumulated
// context. The user turn and the model reply are recorded only when the
// completion succeeds, so a failed call leaves the context untouched.
func (ls *LiveSession) Send(ctx context.Context, completer Completer, message string) (string, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	request := make([]openai.ChatCompletionMessageParamUnion, len(ls.turns), len(ls.turns)+1)
	copy(request, ls.turns)
	request = append(request, turnParam(openai.ChatCompletionMessageParamRoleUser, message))

	reply, err := completer.Complete(ctx, request)
	if err != nil {
		return "", err
	}

	ls.turns = append(request, turnParam(openai.ChatCompletionMessageParamRoleAssistant, reply))
	return reply, nil
}

// Record appends a user/model turn pair without calling the remote API.
// The legacy error path stores the error text as the model reply, and
// the live context has to carry the same pair to match the store.
func (ls *LiveSession) Record(message, reply string) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.turns = append(ls.turns,
		turnParam(openai.ChatCompletionMessageParamRoleUser, message),
		turnParam(openai.ChatCompletionMessageParamRoleAssistant, reply))
}

// Turns returns a snapshot of the accumulated context.
func (ls *LiveSession) Turns() []openai.ChatCompletionMessageParamUnion {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	snapshot := make([]openai.ChatCompletionMessageParamUnion, len(ls.turns))
	copy(snapshot, ls.turns)
	return snapshot
}
