// Package authtest — локальный фейковый API AlphaChap для сквозных
// тестов клиента и flow-машин без настоящего бэкенда.
//
// Сервер воспроизводит наблюдаемое поведение /api/v1: bcrypt-хэши
// паролей, подписанные JWT access-токены, одноразовые refresh-токены
// с ротацией при каждом обмене и фиксированный OTP-код FixedOTP.
// RevokeAccess гасит все выданные access-токены, не трогая refresh:
// следующий защищённый запрос упирается в 401 и проходит через обмен.
package authtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/models"
)

// FixedOTP — код, который сервер принимает для любого челленджа.
const FixedOTP = "1234"

// DefaultAccessTTL — срок жизни access-токена по умолчанию.
const DefaultAccessTTL = 15 * time.Minute

type account struct {
	id     int64
	name   string
	phone  string
	hash   []byte
	active bool // false — отложенная запись до подтверждения OTP
}

// Server — фейковый API поверх httptest.Server.
type Server struct {
	ts        *httptest.Server
	secret    []byte
	accessTTL time.Duration

	mu       sync.Mutex
	nextID   int64
	gen      int64               // поколение access-токенов
	accounts map[string]*account // ключ — номер в локальной форме
	refresh  map[string]string   // живой refresh-токен -> номер
}

// Option настраивает Server.
type Option func(*Server)

// WithAccessTTL задаёт срок жизни access-токенов.
func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) { s.accessTTL = d }
}

// New поднимает фейковый сервер. Закрывать через Close.
func New(opts ...Option) *Server {
	s := &Server{
		secret:    []byte("authtest-secret"),
		accessTTL: DefaultAccessTTL,
		accounts:  make(map[string]*account),
		refresh:   make(map[string]string),
	}

	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/auth/login/", s.handleLogin)
	r.Post("/auth/signup/send-otp/", s.handleSignupSendOTP)
	r.Post("/auth/signup/verify-otp/", s.handleSignupVerifyOTP)
	r.Post("/auth/forget-password/send-otp", s.handleRecoverySendOTP)
	r.Post("/auth/forget-password/verify-otp", s.handleRecoveryVerifyOTP)
	r.Post("/auth/refresh/", s.handleRefresh)
	r.Post("/auth/logout/", s.handleLogout)
	r.Get("/account/me/", s.handleMe)

	s.ts = httptest.NewServer(r)
	return s
}

// URL — базовый адрес сервера.
func (s *Server) URL() string { return s.ts.URL }

// Close останавливает сервер.
func (s *Server) Close() { s.ts.Close() }

// Seed регистрирует активную учётную запись в обход signup-flow.
func (s *Server) Seed(name, localPhone, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.accounts[localPhone] = &account{
		id:     s.nextID,
		name:   name,
		phone:  localPhone,
		hash:   hash,
		active: true,
	}
}

// RevokeAccess делает недействительными все выданные access-токены,
// не трогая refresh-токены: имитация истечения access на сервере.
// Новые токены, выпущенные после вызова, действительны.
func (s *Server) RevokeAccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
}

// RefreshTokenCount — число живых refresh-токенов; после ротации или
// выхода старый токен не должен оставаться живым.
func (s *Server) RefreshTokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.refresh)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.DetailResponse{Detail: "malformed body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[req.PhoneNumber]
	if !ok || !acct.active || bcrypt.CompareHashAndPassword(acct.hash, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, models.DetailResponse{
			Detail: "No active account found with the given credentials",
		})
		return
	}

	writeJSON(w, http.StatusOK, s.authResponse(acct))
}

func (s *Server) handleSignupSendOTP(w http.ResponseWriter, r *http.Request) {
	var req models.SignupSendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.DetailResponse{Detail: "malformed body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if acct, ok := s.accounts[req.PhoneNumber]; ok && acct.active {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"phone_number": {"user with this phone number already exists."},
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.DetailResponse{Detail: "hash failure"})
		return
	}

	// Отложенная запись: активируется после подтверждения кода.
	// Повторный send-otp перезаписывает её вместе с паролем.
	s.nextID++
	s.accounts[req.PhoneNumber] = &account{
		id:    s.nextID,
		phone: req.PhoneNumber,
		hash:  hash,
	}

	writeJSON(w, http.StatusOK, models.DetailResponse{Detail: "otp sent"})
}

func (s *Server) handleSignupVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.SignupVerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.DetailResponse{Detail: "malformed body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[req.PhoneNumber]
	if !ok {
		writeJSON(w, http.StatusBadRequest, models.DetailResponse{Detail: "no pending signup for this phone"})
		return
	}
	if req.OTP != FixedOTP {
		writeJSON(w, http.StatusBadRequest, models.DetailResponse{Detail: "invalid or expired otp"})
		return
	}

	acct.active = true
	writeJSON(w, http.StatusOK, s.authResponse(acct))
}

func (s *Server) handleRecoverySendOTP(w http.ResponseWriter, r *http.Request) {
	var req models.RecoverySendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.DetailResponse{Detail: "malformed body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if acct, ok := s.accounts[req.PhoneNumber]; !ok || !acct.active {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"phone_number": {"no account found with this phone number."},
		})
		return
	}

	writeJSON(w, http.StatusOK, models.DetailResponse{Detail: "otp sent"})
}

func (s *Server) handleRecoveryVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.RecoveryVerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.DetailResponse{Detail: "malformed body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[req.PhoneNumber]
	if !ok || !acct.active {
		writeJSON(w, http.StatusBadRequest, models.DetailResponse{Detail: "no account found with this phone number"})
		return
	}
	if req.OTP != FixedOTP {
		writeJSON(w, http.StatusBadRequest, models.DetailResponse{Detail: "invalid or expired otp"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.DetailResponse{Detail: "hash failure"})
		return
	}

	acct.hash = hash
	writeJSON(w, http.StatusOK, s.authResponse(acct))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.DetailResponse{Detail: "malformed body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	phone, ok := s.refresh[req.Refresh]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.DetailResponse{Detail: "token is invalid or expired"})
		return
	}

	// Ротация: предъявленный токен гаснет, выдаётся новая пара.
	delete(s.refresh, req.Refresh)
	access, refresh := s.issuePair(phone)

	writeJSON(w, http.StatusOK, models.RefreshResponse{Access: access, Refresh: refresh})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if _, err := s.subjectOf(r); err != nil {
		writeJSON(w, http.StatusUnauthorized, models.DetailResponse{Detail: "invalid or expired access token"})
		return
	}

	var req models.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.DetailResponse{Detail: "malformed body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.refresh, req.Refresh)
	writeJSON(w, http.StatusOK, models.DetailResponse{Detail: "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	phone, err := s.subjectOf(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, models.DetailResponse{Detail: "invalid or expired access token"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[phone]
	if !ok || !acct.active {
		writeJSON(w, http.StatusUnauthorized, models.DetailResponse{Detail: "account not found"})
		return
	}

	writeJSON(w, http.StatusOK, userOf(acct))
}

// subjectOf проверяет Bearer access-токен запроса и возвращает номер
// из subject-клейма. Истёкший или неподписанный токен — ошибка.
func (s *Server) subjectOf(r *http.Request) (string, error) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if raw == "" || raw == r.Header.Get("Authorization") {
		return "", jwt.ErrTokenMalformed
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return "", err
	}

	claims := token.Claims.(*jwt.RegisteredClaims)

	s.mu.Lock()
	gen := strconv.FormatInt(s.gen, 10)
	s.mu.Unlock()

	// Токены прошлых поколений погашены через RevokeAccess.
	if claims.ID != gen {
		return "", jwt.ErrTokenExpired
	}

	return claims.Subject, nil
}

// issuePair выпускает подписанный access и одноразовый refresh.
// Вызывается под s.mu.
func (s *Server) issuePair(phone string) (access, refresh string) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   phone,
		ID:        strconv.FormatInt(s.gen, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}

	refresh = uuid.NewString()
	s.refresh[refresh] = phone

	return access, refresh
}

// authResponse собирает терминальный auth-ответ. Вызывается под s.mu.
func (s *Server) authResponse(acct *account) models.AuthResponse {
	access, refresh := s.issuePair(acct.phone)
	return models.AuthResponse{
		Access:  access,
		Refresh: refresh,
		User:    userOf(acct),
	}
}

func userOf(acct *account) models.User {
	return models.User{
		ID:          strconv.FormatInt(acct.id, 10),
		Name:        acct.name,
		PhoneNumber: acct.phone,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
