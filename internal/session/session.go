// Package session хранит текущую идентичность пользователя и пару токенов.
//
// Store — единственное разделяемое изменяемое состояние клиента.
// Он передаётся явно (в пайплайн запросов и контроллеры flow),
// а не живёт глобальным синглтоном: так обновление токенов и тесты
// остаются детерминированными.
//
// Долговременное хранение вынесено за интерфейс Storage: снапшот
// содержит только пользователя и токены, никакое состояние открытых
// flow (OTP-челленджи, незавершённые регистрации) не персистится.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/models"
)

// ErrNotFound — в хранилище нет сохранённого снапшота.
var ErrNotFound = errors.New("session snapshot not found")

// Snapshot — персистируемое подмножество состояния сессии.
type Snapshot struct {
	User   *models.User      `json:"user"`
	Tokens *models.TokenPair `json:"tokens"`
}

// Storage — долговременное хранилище снапшота сессии.
type Storage interface {
	// Load возвращает последний сохранённый снапшот или ErrNotFound.
	Load(ctx context.Context) (*Snapshot, error)
	// Save атомарно заменяет снапшот.
	Save(ctx context.Context, snap *Snapshot) error
	// Clear удаляет снапшот; отсутствие снапшота не является ошибкой.
	Clear(ctx context.Context) error
}

// Store — состояние сессии в памяти плюс сквозная запись в Storage.
// Безопасен для конкурентного использования.
type Store struct {
	mu      sync.RWMutex
	user    *models.User
	tokens  *models.TokenPair
	storage Storage // nil — сессия живёт только в памяти
}

// New создаёт Store и восстанавливает состояние из storage.
//
// storage может быть nil — тогда сессия не переживает перезапуск.
// Повреждённый снапшот не фатален: битые токены (неполная пара)
// отбрасываются, признак аутентификации всегда выводится из
// фактического наличия пользователя, а не читается из хранилища.
func New(ctx context.Context, storage Storage) (*Store, error) {
	const op = "session.New"

	s := &Store{storage: storage}

	if storage == nil {
		return s, nil
	}

	snap, err := storage.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.user = snap.User
	if t := snap.Tokens; t != nil && t.AccessToken != "" && t.RefreshToken != "" {
		s.tokens = &models.TokenPair{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken}
	}

	return s, nil
}

// User возвращает копию текущего пользователя или nil.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}

	u := *s.user
	return &u
}

// IsAuthenticated — производный признак: пользователь присутствует.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.user != nil
}

// AccessToken возвращает текущий access-токен или пустую строку.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tokens == nil {
		return ""
	}

	return s.tokens.AccessToken
}

// RefreshToken возвращает текущий refresh-токен или пустую строку.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tokens == nil {
		return ""
	}

	return s.tokens.RefreshToken
}

// SetUser заменяет пользователя (nil — сброс) и персистирует снапшот.
func (s *Store) SetUser(ctx context.Context, user *models.User) error {
	const op = "session.Store.SetUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	if user == nil {
		s.user = nil
	} else {
		u := *user
		s.user = &u
	}

	if err := s.persistLocked(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SetTokens заменяет пару токенов целиком (nil — сброс) и персистирует
// снапшот. Частичная пара недопустима.
func (s *Store) SetTokens(ctx context.Context, tokens *models.TokenPair) error {
	const op = "session.Store.SetTokens"

	if tokens != nil && (tokens.AccessToken == "" || tokens.RefreshToken == "") {
		return fmt.Errorf("%s: partial token pair", op)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tokens == nil {
		s.tokens = nil
	} else {
		t := *tokens
		s.tokens = &t
	}

	if err := s.persistLocked(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Login атомарно записывает пользователя вместе с парой токенов —
// терминальный переход всех трёх auth-flow.
func (s *Store) Login(ctx context.Context, user models.User, tokens models.TokenPair) error {
	const op = "session.Store.Login"

	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return fmt.Errorf("%s: partial token pair", op)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := user
	t := tokens
	s.user = &u
	s.tokens = &t

	if err := s.persistLocked(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Logout атомарно сбрасывает пользователя и токены и очищает хранилище.
func (s *Store) Logout(ctx context.Context) error {
	const op = "session.Store.Logout"

	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.tokens = nil

	if s.storage == nil {
		return nil
	}

	if err := s.storage.Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// snapshotLocked собирает снапшот под уже взятой блокировкой.
func (s *Store) snapshotLocked() *Snapshot {
	snap := &Snapshot{}

	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	if s.tokens != nil {
		t := *s.tokens
		snap.Tokens = &t
	}

	return snap
}

// persistLocked пишет текущий снапшот в storage под уже взятой
// блокировкой: конкурентные писатели не могут переставить свои Save
// местами, хранилище догоняет память строго в порядке мутаций.
func (s *Store) persistLocked(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}

	return s.storage.Save(ctx, s.snapshotLocked())
}
