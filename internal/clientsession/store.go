package clientsession

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// State — сохраняемое состояние сессии клиента.
// Пароль в состояние не попадает, только токен и его срок действия.
type State struct {
	Token  string    `toml:"token"`
	Expiry time.Time `toml:"expiry"`
	Email  string    `toml:"email"`
}

// TokenStore описывает хранилище состояния сессии.
type TokenStore interface {
	// Save сохраняет состояние сессии.
	Save(state State) error
	// Load возвращает состояние и признак его наличия.
	Load() (State, bool, error)
	// Clear удаляет сохранённое состояние.
	Clear() error
}

// MemoryStore хранит состояние в памяти процесса.
// Используется, когда пользователь не просил запоминать сессию.
type MemoryStore struct {
	mu    sync.Mutex
	state State
	set   bool
}

// NewMemoryStore создает новый экземпляр MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save сохраняет состояние сессии в памяти.
func (s *MemoryStore) Save(state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.set = true
	return nil
}

// Load возвращает состояние сессии из памяти.
func (s *MemoryStore) Load() (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.set, nil
}

// Clear удаляет состояние сессии из памяти.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	s.set = false
	return nil
}

// FileStore хранит состояние сессии в TOML-файле с правами 0600.
// Используется при входе с флагом remember, переживает перезапуск.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore создает новый экземпляр FileStore для файла path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save сериализует состояние в TOML и пишет его в файл.
func (s *FileStore) Save(state State) error {
	const op = "clientsession.FileStore.Save"

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(state)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Load читает и декодирует состояние из файла.
// Отсутствие файла не считается ошибкой.
func (s *FileStore) Load() (State, bool, error) {
	const op = "clientsession.FileStore.Load"

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("%s: %w", op, err)
	}

	var state State
	if err := toml.Unmarshal(data, &state); err != nil {
		return State{}, false, fmt.Errorf("%s: %w", op, err)
	}
	if state.Token == "" {
		return State{}, false, nil
	}
	return state, true, nil
}

// Clear удаляет файл состояния.
func (s *FileStore) Clear() error {
	const op = "clientsession.FileStore.Clear"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
