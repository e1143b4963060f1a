package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nhle/smarttodo/internal/ai"
	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/store"
	"github.com/nhle/smarttodo/internal/suggest"
)

// ExtractSuggestions runs the extractor against the active projects.
func (s *Service) ExtractSuggestions(ctx context.Context, text string) ([]model.Suggestion, error) {
	projects, err := s.ListProjects(ctx, true)
	if err != nil {
		return nil, err
	}
	return suggest.Extract(text, refs(projects)), nil
}

// SendMessage records a user turn, asks the generator for a reply, and
// records the reply with its suggestions.
//
// A failed or timed out generation is not returned as an error: the result
// is an unpersisted assistant message with Failed set, and the store holds
// only the user turn.
func (s *Service) SendMessage(ctx context.Context, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message is empty", store.ErrValidation)
	}

	user := model.Message{
		ID:        s.newID(),
		Role:      model.RoleUser,
		Content:   text,
		Timestamp: s.now(),
	}
	if err := s.store.SaveMessage(ctx, user); err != nil {
		return nil, err
	}

	projects, err := s.ListProjects(ctx, true)
	if err != nil {
		return nil, err
	}
	todos, err := s.store.ListTodos(ctx, store.TodoFilter{})
	if err != nil {
		return nil, err
	}
	notes, err := s.store.ListNotes(ctx, store.NoteFilter{})
	if err != nil {
		return nil, err
	}

	reply, err := s.generate(ctx, ai.Request{
		System: ai.BuildSystemPrompt(projects, todos, notes),
		Prompt: text,
	})
	if err != nil {
		s.log.Warn("assistant reply failed", "err", err)
		return &model.Message{
			ID:        s.newID(),
			Role:      model.RoleAssistant,
			Content:   "Error: " + err.Error(),
			Timestamp: s.now(),
			Failed:    true,
		}, nil
	}

	assistant := model.Message{
		ID:        s.newID(),
		Role:      model.RoleAssistant,
		Content:   reply,
		Timestamp: s.now(),
	}
	if found := suggest.Extract(reply, refs(projects)); len(found) > 0 {
		assistant.Suggestions = found
	}
	if err := s.store.SaveMessage(ctx, assistant); err != nil {
		return nil, err
	}
	s.log.Info("assistant replied", "id", assistant.ID, "suggestions", len(assistant.Suggestions))
	return &assistant, nil
}

func (s *Service) generate(ctx context.Context, req ai.Request) (string, error) {
	if s.gen == nil {
		return "", fmt.Errorf("%w: assistant is not configured", ai.ErrUpstream)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.gen.Generate(ctx, req)
	if err != nil {
		return "", asUpstream(err)
	}
	return reply, nil
}

// AcceptSuggestion adds a message's suggestion as an ai-sourced todo and
// marks it added. A non-empty projectID overrides the suggested project.
func (s *Service) AcceptSuggestion(ctx context.Context, messageID string, index int, projectID string) (*model.Todo, *model.Message, error) {
	s.acceptMu.Lock()
	defer s.acceptMu.Unlock()

	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, nil, err
	}
	if index < 0 || index >= len(msg.Suggestions) {
		return nil, nil, fmt.Errorf("%w: message %s has no suggestion %d", store.ErrValidation, messageID, index)
	}

	sug := msg.Suggestions[index]
	if sug.Added {
		return nil, nil, fmt.Errorf("%w: suggestion %d was already added", store.ErrValidation, index)
	}
	if projectID == "" {
		projectID = sug.ProjectID
	}
	if projectID == "" {
		return nil, nil, fmt.Errorf("%w: suggestion %d needs a project", store.ErrValidation, index)
	}

	todo, err := s.AddTodo(ctx, projectID, sug.Text, model.SourceAI)
	if err != nil {
		return nil, nil, err
	}

	msg.Suggestions[index].Added = true
	msg.Suggestions[index].ProjectID = projectID
	if err := s.store.SaveMessage(ctx, *msg); err != nil {
		return todo, nil, err
	}
	return todo, msg, nil
}

func refs(projects []model.Project) []suggest.Project {
	out := make([]suggest.Project, len(projects))
	for i, p := range projects {
		out[i] = p.Ref()
	}
	return out
}

// asUpstream keeps err in the chain and guarantees ai.ErrUpstream is in it.
func asUpstream(err error) error {
	if errors.Is(err, ai.ErrUpstream) {
		return err
	}
	return fmt.Errorf("%w: %w", ai.ErrUpstream, err)
}
