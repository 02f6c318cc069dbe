package service

import (
	"context"
	"errors"
	"fmt"

	"chatrelay/model"
	"chatrelay/platform"

	"github.com/openai/openai-go"
)

var logger = platform.Logger

// ErrCompletion tags remote completion failures so the handler can map
// them to a distinct status instead of a generic server error.
var ErrCompletion = errors.New("completion failed")

// Completer is the remote completion API seam. The production
// implementation wraps the shared openai client; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

// LLMCompleter sends the full turn list as one non-streaming chat
// completion request.
type LLMCompleter struct {
	Model string
}

func (l *LLMCompleter) Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: openai.F(messages),
		Model:    openai.F(l.Model),
	}
	completion, err := platform.LLMClient.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("empty choices in completion response")
	}
	return completion.Choices[0].Message.Content, nil
}

// ChatService orchestrates one chat turn: resolve the conversation,
// rehydrate or reuse its live context, call the remote model and
// persist both sides of the exchange.
type ChatService struct {
	registry        *SessionRegistry
	completer       Completer
	legacyErrorText bool
}

// NewChatService wires the chat service. With legacyErrorText set,
// completion failures are returned as the reply text the way the first
// iterations of this service did, instead of an ErrCompletion error.
func NewChatService(registry *SessionRegistry, completer Completer, legacyErrorText bool) *ChatService {
	return &ChatService{
		registry:        registry,
		completer:       completer,
		legacyErrorText: legacyErrorText,
	}
}

// SendMessage handles one turn of the conversation chatId owned by
// userId. newSession marks a freshly generated chat id, which must not
// collide with an existing conversation.
//
// The store writes happen after the remote call, matching the original
// flow; a crash between the two appends leaves the user turn without
// its reply. The next rehydration replays that asymmetric history as-is.
func (s *ChatService) SendMessage(ctx context.Context, requestId, userId, chatId string, newSession bool, message string) (string, error) {
	if err := model.EnsureUser(userId); err != nil {
		return "", err
	}
	if newSession {
		if err := model.CreateChatSession(userId, chatId); err != nil {
			return "", err
		}
	} else {
		if err := model.EnsureChatSession(userId, chatId); err != nil {
			return "", err
		}
	}

	key := SessionKey(userId, chatId)
	sess, ok := s.registry.Get(key)
	if !ok {
		history, err := model.LoadHistory(chatId)
		if err != nil {
			return "", err
		}
		sess = s.registry.GetOrCreate(key, history)
	}

	reply, err := sess.Send(ctx, s.completer, message)
	if err != nil {
		logger.Warnf("[%s] completion error for %s: %s", requestId, key, err)
		if !s.legacyErrorText {
			return "", fmt.Errorf("%w: %v", ErrCompletion, err)
		}
		// legacy behavior: the error text becomes the reply
		reply = fmt.Sprintf("Error with completion: %v", err)
		sess.Record(message, reply)
	}

	if err := model.AppendMessage(chatId, model.RoleUser, message); err != nil {
		return "", err
	}
	if err := model.AppendMessage(chatId, model.RoleModel, reply); err != nil {
		return "", err
	}
	return reply, nil
}

// History returns a conversation's stored turns oldest first.
func (s *ChatService) History(chatId string) ([]model.Turn, error) {
	return model.LoadHistory(chatId)
}

// ListSessions returns the chat ids owned by a user.
func (s *ChatService) ListSessions(userId string) ([]string, error) {
	return model.ListChatSessions(userId)
}
