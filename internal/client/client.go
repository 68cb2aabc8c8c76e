// Package client — пайплайн запросов к API AlphaChap.
//
// Каждый исходящий запрос штампуется заголовком
// "Authorization: Bearer <access>", причём токен читается из сессии
// в момент отправки, а не в момент постановки запроса. Ответ 401
// перехватывается: пайплайн один раз обменивает refresh-токен на новую
// пару, записывает её в сессию и повторяет исходный запрос.
//
// Обновление пары выполняется в режиме single-flight: первый 401
// запускает обмен, остальные 401, пришедшие пока обмен не завершён,
// ждут его результата вместо собственных вызовов /auth/refresh/.
// Сервер ротирует refresh-токен при каждом обмене, поэтому два
// конкурентных обмена аннулировали бы друг друга.
//
// Неудачный обмен — принудительный выход: сессия очищается, хук
// onForcedLogout уводит приложение на неаутентифицированный вход.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	logctx "github.com/MohammadAminFeliAkbari/alphachap-go/internal/pkg/log"
	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/models"
	"github.com/MohammadAminFeliAkbari/alphachap-go/internal/session"
)

const renewKey = "refresh" // единый ключ single-flight: обмен общий для всех запросов

// Client — HTTP-клиент AlphaChap с прозрачным обновлением токенов.
// Безопасен для конкурентного использования.
type Client struct {
	httpc   *http.Client
	baseURL string
	session *session.Store

	renew       singleflight.Group
	renewLeeway time.Duration // 0 — проактивное обновление выключено

	onForcedLogout func()
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет транспорт (таймауты, прокси, тесты).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithForcedLogoutHook задаёт обработчик принудительного выхода —
// аналог редиректа на страницу входа.
func WithForcedLogoutHook(fn func()) Option {
	return func(c *Client) { c.onForcedLogout = fn }
}

// WithProactiveRenewal включает досрочное обновление: если до истечения
// access-токена осталось меньше leeway, пара обновляется до отправки
// запроса (тем же single-flight путём). Реактивный перехват 401
// остаётся основным механизмом.
func WithProactiveRenewal(leeway time.Duration) Option {
	return func(c *Client) { c.renewLeeway = leeway }
}

// New создаёт клиент. Сессия передаётся явно: пайплайн не владеет
// глобальным состоянием и в тестах получает собственный Store.
func New(baseURL string, sess *session.Store, opts ...Option) *Client {
	c := &Client{
		httpc:   &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		session: sess,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Session возвращает связанный Store.
func (c *Client) Session() *session.Store { return c.session }

// callKind — режим обработки ответа для конкретного вызова.
type callKind int

const (
	// callAuthed — обычный защищённый запрос: bearer + перехват 401.
	callAuthed callKind = iota
	// callAnonymous — запрос без Authorization (логин, запрос OTP):
	// залежавшийся токен не должен ехать вместе с анонимным вызовом.
	callAnonymous
	// callLogin — запрос логина: 401 означает "нет активной учётной
	// записи", а не истёкшую сессию, и обновления не запускает.
	callLogin
)

// do выполняет один логический запрос: отправка, разбор ошибок,
// не более одного восстановления после 401.
func (c *Client) do(ctx context.Context, method, path string, body, out any, kind callKind) error {
	var bodyFn func() any
	if body != nil {
		bodyFn = func() any { return body }
	}

	return c.doFunc(ctx, method, path, bodyFn, out, kind)
}

// doFunc — как do, но тело собирается непосредственно перед каждой
// отправкой. Повтор после обмена токенов читает сессию заново: logout,
// например, должен нести уже ротированный refresh-токен, а не тот,
// что лежал в сессии до обмена.
func (c *Client) doFunc(ctx context.Context, method, path string, bodyFn func() any, out any, kind callKind) error {
	payload, err := marshalBody(bodyFn)
	if err != nil {
		return transportError(err)
	}

	if kind == callAuthed && c.renewLeeway > 0 {
		c.maybeRenewEarly(ctx)
	}

	status, respBody, err := c.send(ctx, method, path, payload, kind != callAuthed)
	if err != nil {
		return transportError(err)
	}

	if status == http.StatusUnauthorized && kind == callAuthed {
		return c.recover(ctx, method, path, bodyFn, out, respBody)
	}

	return decodeResponse(status, respBody, out, kind)
}

func marshalBody(bodyFn func() any) ([]byte, error) {
	if bodyFn == nil {
		return nil, nil
	}

	return json.Marshal(bodyFn())
}

// recover — восстановление после 401: ровно один обмен и ровно один
// повтор исходного запроса. Второго круга не бывает — повторный 401
// завершает сессию.
func (c *Client) recover(ctx context.Context, method, path string, bodyFn func() any, out any, firstBody []byte) error {
	log := logctx.From(ctx)

	if c.session.RefreshToken() == "" {
		// Восстанавливать нечем — отдаём исходный 401 как есть.
		return &Error{Sentinel: ErrUnauthenticated, Status: http.StatusUnauthorized, Detail: detailOf(firstBody)}
	}

	if err := c.renewTokens(ctx); err != nil {
		log.Warn("token_renewal_failed", "err", err.Error())
		c.forceLogout(ctx)
		return &Error{Sentinel: ErrSessionExpired, Status: http.StatusUnauthorized, cause: err}
	}

	// Тело пересобирается после обмена: данные сессии могли смениться.
	payload, err := marshalBody(bodyFn)
	if err != nil {
		return transportError(err)
	}

	status, respBody, err := c.send(ctx, method, path, payload, false)
	if err != nil {
		return transportError(err)
	}

	if status == http.StatusUnauthorized {
		log.Warn("request_unauthorized_after_renewal", "path", path)
		c.forceLogout(ctx)
		return &Error{Sentinel: ErrSessionExpired, Status: http.StatusUnauthorized, Detail: detailOf(respBody)}
	}

	return decodeResponse(status, respBody, out, callAuthed)
}

// send отправляет запрос. Bearer читается из сессии непосредственно
// перед отправкой: к моменту повтора там уже лежит обновлённый токен.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, anonymous bool) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if !anonymous {
		if access := c.session.AccessToken(); access != "" {
			req.Header.Set("Authorization", "Bearer "+access)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, raw, nil
}

// renewTokens обменивает refresh-токен на новую пару.
//
// Single-flight: конкурентные вызовы коалесцируются в один обмен,
// все ожидающие получают общий результат. Запрос обмена живёт на
// контексте без отмены: общий результат не должен зависеть от того,
// что первый из ожидающих отменил свой запрос.
func (c *Client) renewTokens(ctx context.Context) error {
	const op = "client.renewTokens"

	_, err, _ := c.renew.Do(renewKey, func() (any, error) {
		refresh := c.session.RefreshToken()
		if refresh == "" {
			return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
		}

		renewCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.httpc.Timeout)
		defer cancel()

		raw, err := json.Marshal(models.RefreshRequest{Refresh: refresh})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		status, body, err := c.send(renewCtx, http.MethodPost, "/auth/refresh/", raw, true)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if status != http.StatusOK {
			return nil, fmt.Errorf("%s: refresh rejected (http %d)", op, status)
		}

		var resp models.RefreshResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		pair := &models.TokenPair{AccessToken: resp.Access, RefreshToken: resp.Refresh}
		if err := c.session.SetTokens(renewCtx, pair); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		logctx.From(ctx).Debug("token_pair_renewed")

		return nil, nil
	})

	return err
}

// maybeRenewEarly обновляет пару досрочно, если access-токен истекает
// в пределах leeway. Ошибка здесь не фатальна: реактивный путь 401
// разберётся, если токен действительно мёртв.
func (c *Client) maybeRenewEarly(ctx context.Context) {
	access := c.session.AccessToken()
	if access == "" || c.session.RefreshToken() == "" {
		return
	}

	exp, ok := accessTokenExpiry(access)
	if !ok || time.Until(exp) > c.renewLeeway {
		return
	}

	if err := c.renewTokens(ctx); err != nil {
		logctx.From(ctx).Debug("proactive_renewal_failed", "err", err.Error())
	}
}

// forceLogout очищает сессию и уводит приложение на вход.
// Очистка идёт на контексте без отмены: выход должен состояться,
// даже если исходный запрос уже отменён.
func (c *Client) forceLogout(ctx context.Context) {
	if err := c.session.Logout(context.WithoutCancel(ctx)); err != nil {
		logctx.From(ctx).Warn("forced_logout_storage_clear_failed", "err", err.Error())
	}

	logctx.From(ctx).Info("forced_logout")

	if c.onForcedLogout != nil {
		c.onForcedLogout()
	}
}

// decodeResponse превращает статус и тело в результат вызова.
func decodeResponse(status int, body []byte, out any, kind callKind) error {
	switch {
	case status >= 200 && status < 300:
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return transportError(err)
		}
		return nil

	case status == http.StatusBadRequest:
		return parseBadRequest(body)

	case status == http.StatusUnauthorized:
		if kind == callLogin {
			return &Error{Sentinel: ErrInvalidCredentials, Status: status, Detail: detailOf(body)}
		}
		return &Error{Sentinel: ErrUnauthenticated, Status: status, Detail: detailOf(body)}

	default:
		return &Error{Sentinel: ErrUnavailable, Status: status, Detail: detailOf(body)}
	}
}

// detailOf достаёт поле detail из тела ошибки, если оно есть.
func detailOf(body []byte) string {
	var resp models.DetailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}

	return resp.Detail
}
