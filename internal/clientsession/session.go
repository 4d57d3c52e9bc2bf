// Package clientsession реализует клиентскую сторону сессии шлюза:
// вход, хранение токена, локальную проверку аутентификации и
// упреждающее продление токена до его истечения.
//
// Состояние хранится либо в памяти процесса, либо в TOML-файле,
// в зависимости от флага remember при входе. Любая неудача продления
// полностью очищает состояние: клиент никогда не остаётся с токеном,
// в валидности которого не уверен.
package clientsession

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/magabrotheeeer/video-access-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/video-access-gateway/internal/models"
)

// ErrNotAuthenticated возвращается, когда активной сессии нет
// или её токен истёк.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrServerRejected возвращается, когда шлюз отверг запрос.
var ErrServerRejected = errors.New("request rejected by gateway")

// defaultRefreshBefore — запас до истечения токена, при котором
// запускается упреждающее продление.
const defaultRefreshBefore = 15 * time.Minute

const defaultHTTPTimeout = 10 * time.Second

// envelope — формат JSON-ответов шлюза.
type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// tokenData — полезная нагрузка ответов входа и продления.
type tokenData struct {
	Token  string              `json:"token"`
	Expiry time.Time           `json:"expiry"`
	User   *models.AccountView `json:"user,omitempty"`
}

// Session управляет токеном одного клиента шлюза.
type Session struct {
	log           *slog.Logger
	baseURL       string
	httpClient    *http.Client
	memory        TokenStore
	durable       TokenStore // nil, если долговременное хранилище не настроено
	refreshBefore time.Duration

	mu     sync.Mutex
	active TokenStore // выбирается флагом remember при входе

	sf singleflight.Group
}

// NewSession создает новый экземпляр Session.
//
// durable может быть nil: тогда вход с remember недоступен и состояние
// живёт только в памяти процесса. httpClient может быть nil, в этом
// случае используется клиент с таймаутом по умолчанию.
func NewSession(log *slog.Logger, baseURL string, durable TokenStore, httpClient *http.Client) *Session {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Session{
		log:           log,
		baseURL:       baseURL,
		httpClient:    httpClient,
		memory:        NewMemoryStore(),
		durable:       durable,
		refreshBefore: defaultRefreshBefore,
	}
}

// Login выполняет вход и сохраняет токен. При remember состояние
// пишется в долговременное хранилище и переживает перезапуск,
// иначе живёт только в памяти процесса.
func (s *Session) Login(ctx context.Context, email, password string, remember bool) error {
	const op = "clientsession.Login"

	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	data, err := s.postJSON(ctx, "/api/v1/auth/login", body, "")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	store := s.memory
	if remember {
		if s.durable == nil {
			return fmt.Errorf("%s: durable store is not configured", op)
		}
		store = s.durable
	}

	// Предыдущая сессия вычищается из обоих хранилищ, чтобы после
	// выхода нигде не оставался старый токен.
	if err := s.clearAll(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := store.Save(State{Token: td.Token, Expiry: td.Expiry, Email: email}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.active = store
	s.mu.Unlock()

	s.log.Info("session established", slog.String("op", op), slog.Bool("remember", remember))
	return nil
}

// Logout очищает состояние сессии во всех хранилищах.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
	return s.clearAll()
}

// IsAuthenticated сообщает, есть ли активная сессия с неистёкшим
// токеном. Проверка локальная, запрос к шлюзу не выполняется.
func (s *Session) IsAuthenticated() bool {
	state, ok := s.currentState()
	return ok && time.Now().Before(state.Expiry)
}

// Token возвращает действующий токен сессии.
//
// Если токену осталось жить меньше порога, он упреждающе продлевается;
// одновременные вызовы схлопываются в одно продление. Истёкший токен
// означает конец сессии, состояние очищается.
func (s *Session) Token(ctx context.Context) (string, error) {
	const op = "clientsession.Token"

	state, ok := s.currentState()
	if !ok {
		return "", ErrNotAuthenticated
	}

	now := time.Now()
	if !now.Before(state.Expiry) {
		_ = s.Logout()
		return "", ErrNotAuthenticated
	}

	if state.Expiry.Sub(now) >= s.refreshBefore {
		return state.Token, nil
	}

	v, err, _ := s.sf.Do("refresh", func() (any, error) {
		// Другой вызов мог успеть продлить токен, пока этот ждал.
		if cur, ok := s.currentState(); ok && time.Until(cur.Expiry) >= s.refreshBefore {
			return cur.Token, nil
		}
		return s.refresh(ctx, state)
	})
	if err != nil {
		// Неудача продления означает конец сессии: лучше заставить
		// пользователя войти заново, чем держать сомнительный токен.
		s.log.Warn("token refresh failed, clearing session", slog.String("op", op), sl.Err(err))
		_ = s.Logout()
		return "", ErrNotAuthenticated
	}
	return v.(string), nil
}

// CurrentAccount запрашивает у шлюза аккаунт активной сессии.
func (s *Session) CurrentAccount(ctx context.Context) (*models.AccountView, error) {
	const op = "clientsession.CurrentAccount"

	data, err := s.getJSON(ctx, "/api/v1/auth/me")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var payload struct {
		User *models.AccountView `json:"user"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payload.User, nil
}

// Videos запрашивает у шлюза каталог доступных видео.
func (s *Session) Videos(ctx context.Context) ([]models.Video, error) {
	const op = "clientsession.Videos"

	data, err := s.getJSON(ctx, "/api/v1/content/videos")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var payload struct {
		Data []models.Video `json:"data"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payload.Data, nil
}

// refresh продлевает токен через шлюз и сохраняет новое состояние
// в то же хранилище, где лежало старое.
func (s *Session) refresh(ctx context.Context, state State) (string, error) {
	const op = "clientsession.refresh"

	data, err := s.postJSON(ctx, "/api/v1/auth/refresh", nil, state.Token)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	store := s.active
	s.mu.Unlock()
	if store == nil {
		return "", ErrNotAuthenticated
	}
	if err := store.Save(State{Token: td.Token, Expiry: td.Expiry, Email: state.Email}); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("token refreshed", slog.String("op", op), slog.Time("expiry", td.Expiry))
	return td.Token, nil
}

// currentState возвращает состояние активной сессии.
// После перезапуска процесса активным становится долговременное
// хранилище, если в нём есть сохранённая сессия.
func (s *Session) currentState() (State, bool) {
	s.mu.Lock()
	store := s.active
	s.mu.Unlock()

	if store != nil {
		state, ok, err := store.Load()
		if err != nil {
			s.log.Warn("failed to load session state", sl.Err(err))
			return State{}, false
		}
		return state, ok
	}

	if s.durable != nil {
		state, ok, err := s.durable.Load()
		if err != nil {
			s.log.Warn("failed to load session state", sl.Err(err))
			return State{}, false
		}
		if ok {
			s.mu.Lock()
			s.active = s.durable
			s.mu.Unlock()
			return state, true
		}
	}
	return State{}, false
}

func (s *Session) clearAll() error {
	if err := s.memory.Clear(); err != nil {
		return err
	}
	if s.durable != nil {
		return s.durable.Clear()
	}
	return nil
}

// postJSON выполняет POST к шлюзу и возвращает поле data ответа.
// При непустом bearer добавляется заголовок Authorization.
func (s *Session) postJSON(ctx context.Context, path string, body []byte, bearer string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return s.doJSON(req)
}

// getJSON выполняет GET к шлюзу с токеном активной сессии.
func (s *Session) getJSON(ctx context.Context, path string) (json.RawMessage, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return s.doJSON(req)
}

func (s *Session) doJSON(req *http.Request) (json.RawMessage, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: unexpected response: %s", ErrServerRejected, resp.Status)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices || env.Status != "OK" {
		return nil, fmt.Errorf("%w: %s", ErrServerRejected, env.Error)
	}
	return env.Data, nil
}
