package cloud

// circuitOpenLocked reports whether the circuit for url is open. An open
// circuit self-heals once the reset timeout has elapsed since the last
// failure: this is a timed reset, not a half-open trial request. Caller
// holds m.mu.
func (m *Manager) circuitOpenLocked(url string) bool {
	state, ok := m.circuits[url]
	if !ok || state.failureCount < m.failureThreshold {
		return false
	}
	if m.now().Sub(state.lastFailureTime) > m.resetTimeout {
		delete(m.circuits, url)
		m.logger.Debug("circuit reset after cooldown", "url", url)
		return false
	}
	return true
}

// recordFailure bumps the failure counter and timestamp for url.
func (m *Manager) recordFailure(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.circuits[url]
	if !ok {
		state = &circuitState{}
		m.circuits[url] = state
	}
	state.failureCount++
	state.lastFailureTime = m.now()

	if state.failureCount == m.failureThreshold {
		m.logger.Warn("circuit opened", "url", url, "failures", state.failureCount)
	}
}
