package behaviour

// Behaviour animates part of a scene between frames. Start runs once
// before the first update.
type Behaviour interface {
	Start()
	Update(dt float32)
}

type wrapper struct {
	behaviour Behaviour
	started   bool
}

// Manager steps registered behaviours. Removal swaps with the last
// entry, so update order is not stable across removals.
type Manager struct {
	behaviours []wrapper
}

var GlobalManager = NewManager()

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Add(b Behaviour) {
	m.behaviours = append(m.behaviours, wrapper{behaviour: b})
}

func (m *Manager) Remove(b Behaviour) {
	for i := range m.behaviours {
		if m.behaviours[i].behaviour == b {
			m.behaviours[i] = m.behaviours[len(m.behaviours)-1]
			m.behaviours = m.behaviours[:len(m.behaviours)-1]
			return
		}
	}
}

func (m *Manager) Clear() {
	m.behaviours = m.behaviours[:0]
}

func (m *Manager) Len() int {
	return len(m.behaviours)
}

// UpdateAll starts any behaviour that has not run yet, then advances
// every behaviour by dt seconds.
func (m *Manager) UpdateAll(dt float32) {
	for i := range m.behaviours {
		if !m.behaviours[i].started {
			m.behaviours[i].behaviour.Start()
			m.behaviours[i].started = true
		}
		m.behaviours[i].behaviour.Update(dt)
	}
}
