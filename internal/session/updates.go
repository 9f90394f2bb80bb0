package session

import "time"

// UpdateContext applies a generic update map to a session: the
// "code_history" and "conversation_history" keys (each a slice of entries)
// are appended with eviction to the bounded size; "metadata" is merged key
// by key; "current_file" (a string) replaces CurrentFile. Every other key
// is ignored.
// Returns false if the session does not exist.
func (m *Manager) UpdateContext(sessionID string, updates map[string]any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, ok := m.getLocked(sessionID)
	if !ok {
		return false
	}

	if raw, present := updates["code_history"]; present {
		if entries, ok := raw.([]CodeEntry); ok {
			ctx.CodeHistory = appendBounded(ctx.CodeHistory, entries, m.codeLimit)
		}
	}
	if raw, present := updates["conversation_history"]; present {
		if entries, ok := raw.([]Message); ok {
			ctx.ConversationHistory = appendBounded(ctx.ConversationHistory, entries, m.convLimit)
		}
	}
	if raw, present := updates["metadata"]; present {
		if md, ok := raw.(map[string]any); ok {
			for k, v := range md {
				ctx.Metadata[k] = v
			}
		}
	}
	if raw, present := updates["current_file"]; present {
		if s, ok := raw.(string); ok {
			ctx.CurrentFile = s
		}
	}

	ctx.UpdatedAt = time.Now().UTC()
	m.persist(ctx)
	return true
}

func appendBounded[T any](existing []T, add []T, limit int) []T {
	out := append(append([]T(nil), existing...), add...)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// AddCodeToContext appends one code entry, evicting the oldest beyond the
// bounded size (20).
func (m *Manager) AddCodeToContext(sessionID, code, language string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx, ok := m.getLocked(sessionID)
	if !ok {
		return false
	}
	ctx.CodeHistory = appendBounded(ctx.CodeHistory, []CodeEntry{{
		Code: code, Language: language, Timestamp: time.Now().UTC(),
	}}, m.codeLimit)
	ctx.UpdatedAt = time.Now().UTC()
	m.persist(ctx)
	return true
}

// AddMessageToContext appends one conversation message, evicting the
// oldest beyond the bounded size (30).
func (m *Manager) AddMessageToContext(sessionID, role, content string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx, ok := m.getLocked(sessionID)
	if !ok {
		return false
	}
	ctx.ConversationHistory = appendBounded(ctx.ConversationHistory, []Message{{
		Role: role, Content: content, Timestamp: time.Now().UTC(),
	}}, m.convLimit)
	ctx.UpdatedAt = time.Now().UTC()
	m.persist(ctx)
	return true
}

// AddFileToContext records (or updates) an open file's tracked metadata.
func (m *Manager) AddFileToContext(sessionID, path, language, content string, open bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx, ok := m.getLocked(sessionID)
	if !ok {
		return false
	}
	now := time.Now().UTC()
	existing, had := ctx.OpenFiles[path]
	first := now
	if had {
		first = existing.FirstAccess
	}
	ctx.OpenFiles[path] = &OpenFile{
		Language:    language,
		Open:        open,
		FirstAccess: first,
		LastAccess:  now,
		Content:     content,
	}
	ctx.CurrentFile = path
	ctx.UpdatedAt = now
	m.persist(ctx)
	return true
}

// AddExecutionToContext appends one per-session execution entry, evicting
// the oldest beyond the bounded size (20). Implements contract.SessionStore
// so tool cores can record their own invocation as a side effect.
func (m *Manager) AddExecutionToContext(sessionID, toolName string, args map[string]any, result map[string]any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx, ok := m.getLocked(sessionID)
	if !ok {
		return false
	}
	ctx.ExecutionHistory = appendBounded(ctx.ExecutionHistory, []ExecutionEntry{{
		ToolName: toolName, Args: args, Result: result, Timestamp: time.Now().UTC(),
	}}, m.execLimit)
	ctx.UpdatedAt = time.Now().UTC()
	m.persist(ctx)
	return true
}

// SetProjectStructure replaces the session's project-structure value.
func (m *Manager) SetProjectStructure(sessionID string, structure any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx, ok := m.getLocked(sessionID)
	if !ok {
		return false
	}
	ctx.ProjectStructure = structure
	ctx.UpdatedAt = time.Now().UTC()
	m.persist(ctx)
	return true
}

// SetLanguageContext replaces the session's language context.
func (m *Manager) SetLanguageContext(sessionID string, lc LanguageContext) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx, ok := m.getLocked(sessionID)
	if !ok {
		return false
	}
	ctx.LanguageContext = &lc
	ctx.UpdatedAt = time.Now().UTC()
	m.persist(ctx)
	return true
}

// AddDependencyToContext records one dependency in the session's map.
func (m *Manager) AddDependencyToContext(sessionID, name, version, depType string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx, ok := m.getLocked(sessionID)
	if !ok {
		return false
	}
	ctx.Dependencies[name] = Dependency{Version: version, Type: depType, AddedAt: time.Now().UTC()}
	ctx.UpdatedAt = time.Now().UTC()
	m.persist(ctx)
	return true
}

// UpdateContextMetadata merges the given keys into the session's metadata
// map (never replaces it wholesale).
func (m *Manager) UpdateContextMetadata(sessionID string, metadata map[string]any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx, ok := m.getLocked(sessionID)
	if !ok {
		return false
	}
	for k, v := range metadata {
		ctx.Metadata[k] = v
	}
	ctx.UpdatedAt = time.Now().UTC()
	m.persist(ctx)
	return true
}

// GetSessionSummary returns a compact view of a session for introspection.
func (m *Manager) GetSessionSummary(sessionID string) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx, ok := m.getLocked(sessionID)
	if !ok {
		return nil, false
	}
	return map[string]any{
		"session_id":          ctx.SessionID,
		"code_history_count":  len(ctx.CodeHistory),
		"conversation_count":  len(ctx.ConversationHistory),
		"execution_count":     len(ctx.ExecutionHistory),
		"open_files_count":    len(ctx.OpenFiles),
		"current_file":        ctx.CurrentFile,
		"dependencies_count":  len(ctx.Dependencies),
		"created_at":          ctx.CreatedAt,
		"updated_at":          ctx.UpdatedAt,
	}, true
}
