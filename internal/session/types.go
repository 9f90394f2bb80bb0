// Package session implements the Session Context Manager of spec §4.4:
// per-session conversation/code/execution histories with bounded sizes and
// optional best-effort on-disk persistence.
package session

import "time"

// truncationLimit is the spec's literal figure for persisted open-file
// content (spec §4.4/§6/§8): 1024 characters, chosen over the Python
// original's 1000-character truncation because spec.md states 1024
// explicitly in three places (§4.4, §6, §8's boundary-behavior test).
const truncationLimit = 1024

const truncationMarker = "… [truncated]"

// CodeEntry is one item of a session's bounded code history.
type CodeEntry struct {
	Code      string    `json:"code"`
	Language  string    `json:"language,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Message is one item of a session's bounded conversation history.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ExecutionEntry is one item of a session's bounded execution history —
// distinct from the orchestrator's global execution history; this one is
// scoped to a single session.
type ExecutionEntry struct {
	ToolName  string         `json:"tool_name"`
	Args      map[string]any `json:"args"`
	Result    map[string]any `json:"result"`
	Timestamp time.Time      `json:"timestamp"`
}

// OpenFile tracks one file the session has touched.
type OpenFile struct {
	Language    string    `json:"language,omitempty"`
	Open        bool      `json:"open"`
	FirstAccess time.Time `json:"first_access"`
	LastAccess  time.Time `json:"last_access"`
	Content     string    `json:"content,omitempty"`
}

// LanguageContext is the session's active language/framework context.
type LanguageContext struct {
	Name       string   `json:"name"`
	Version    string   `json:"version,omitempty"`
	Frameworks []string `json:"frameworks,omitempty"`
}

// Dependency is one entry of the session's dependency map.
type Dependency struct {
	Version string    `json:"version"`
	Type    string    `json:"type,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// Context is the spec §3 "Session context" entity.
type Context struct {
	SessionID           string                 `json:"session_id"`
	CodeHistory         []CodeEntry            `json:"code_history"`
	ConversationHistory []Message              `json:"conversation_history"`
	ExecutionHistory     []ExecutionEntry       `json:"execution_history"`
	CurrentFile          string                 `json:"current_file,omitempty"`
	OpenFiles            map[string]*OpenFile   `json:"open_files"`
	ProjectStructure      any                    `json:"project_structure,omitempty"`
	LanguageContext       *LanguageContext       `json:"language_context,omitempty"`
	Dependencies          map[string]Dependency  `json:"dependencies"`
	Metadata              map[string]any         `json:"metadata"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

func newContext(sessionID string, metadata map[string]any) *Context {
	now := time.Now().UTC()
	md := make(map[string]any, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	return &Context{
		SessionID:    sessionID,
		OpenFiles:    make(map[string]*OpenFile),
		Dependencies: make(map[string]Dependency),
		Metadata:     md,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
