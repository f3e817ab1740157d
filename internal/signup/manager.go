package signup

import (
	"sync"

	"axone_backend/internal/appErrors"

	"github.com/google/uuid"
)

// Manager раздает оркестраторы по ID signup-флоу. Активные держатся в
// памяти; после рестарта сервиса или перезагрузки страницы состояние
// поднимается из Store, и пользователь продолжает с того же шага.
type Manager struct {
	mu     sync.Mutex
	active map[string]*Orchestrator
	deps   Deps
}

func NewManager(deps Deps) *Manager {
	return &Manager{
		active: make(map[string]*Orchestrator),
		deps:   deps,
	}
}

// Start создает новый signup-флоу на шаге form.
func (m *Manager) Start() (*Orchestrator, error) {
	state := NewState(uuid.NewString())
	if err := m.deps.Store.Save(state); err != nil {
		return nil, appErrors.InternalError(err)
	}

	orch := New(state, m.deps)

	m.mu.Lock()
	m.active[state.ID] = orch
	m.mu.Unlock()

	return orch, nil
}

// Get возвращает оркестратор по ID, при необходимости восстанавливая
// состояние из Store.
func (m *Manager) Get(id string) (*Orchestrator, error) {
	m.mu.Lock()
	if orch, ok := m.active[id]; ok {
		m.mu.Unlock()
		return orch, nil
	}
	m.mu.Unlock()

	state, err := m.deps.Store.Load(id)
	if err != nil {
		if appErrors.Is(err, ErrStateNotFound) {
			return nil, appErrors.ErrSignupNotFound
		}
		return nil, appErrors.InternalError(err)
	}

	orch := New(state, m.deps)

	m.mu.Lock()
	// Конкурентный Get мог восстановить раньше нас - его экземпляр
	// главнее, иначе два оркестратора разойдутся по состоянию
	if existing, ok := m.active[id]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.active[id] = orch
	m.mu.Unlock()

	return orch, nil
}

// Forget убирает завершенный флоу из памяти.
func (m *Manager) Forget(id string) {
	m.mu.Lock()
	delete(m.active, id)
	m.mu.Unlock()
}
