package subscription

import (
	"context"
	"errors"
	"fmt"

	"leetcode-bot/internal/domain"
)

// Result описывает исход подписки или отписки.
type Result int

const (
	// Changed: состояние подписки изменилось.
	Changed Result = iota
	// AlreadyInState: пользователь уже был в нужном состоянии.
	AlreadyInState
)

// Service управляет подпиской пользователей на ежедневную рассылку.
type Service struct {
	subscribers domain.SubscriberRepo
}

// NewService создаёт сервис.
func NewService(subscribers domain.SubscriberRepo) *Service {
	return &Service{subscribers: subscribers}
}

// Touch регистрирует пользователя при первом обращении и обновляет профиль.
func (s *Service) Touch(ctx context.Context, profile domain.Subscriber) (domain.Subscriber, error) {
	sub, err := s.subscribers.GetOrCreate(ctx, profile)
	if err != nil {
		return domain.Subscriber{}, fmt.Errorf("регистрация пользователя %d: %w", profile.UserID, err)
	}
	return sub, nil
}

// Subscribe включает рассылку для пользователя.
func (s *Service) Subscribe(ctx context.Context, profile domain.Subscriber) (Result, error) {
	return s.set(ctx, profile, true)
}

// Unsubscribe выключает рассылку для пользователя.
func (s *Service) Unsubscribe(ctx context.Context, profile domain.Subscriber) (Result, error) {
	return s.set(ctx, profile, false)
}

// set меняет флаг подписки. Профиль сохраняется, только если пользователь ещё не зарегистрирован:
// обработчик сообщений уже вызвал Touch для этого апдейта.
func (s *Service) set(ctx context.Context, profile domain.Subscriber, subscribed bool) (Result, error) {
	changed, err := s.subscribers.SetSubscribed(ctx, profile.UserID, subscribed)
	if errors.Is(err, domain.ErrSubscriberNotFound) {
		if _, err := s.Touch(ctx, profile); err != nil {
			return AlreadyInState, err
		}
		changed, err = s.subscribers.SetSubscribed(ctx, profile.UserID, subscribed)
	}
	if err != nil {
		return AlreadyInState, fmt.Errorf("изменение подписки %d: %w", profile.UserID, err)
	}
	if changed {
		return Changed, nil
	}
	return AlreadyInState, nil
}
