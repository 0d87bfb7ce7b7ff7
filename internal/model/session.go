package model

import "time"

// MessageRole identifies who produced a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// InputMode records how the user supplied a query. Voice queries arrive
// already transcribed and are processed identically to text.
type InputMode string

const (
	InputText  InputMode = "text"
	InputVoice InputMode = "voice"
)

// Message is one turn of a conversation.
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	InputMode InputMode   `json:"inputMode,omitempty"`
}

// Session holds per-conversation state. History is bounded to
// LowBandwidthMaxMessages when LowBandwidthMode is on; truncation happens
// eagerly on append inside the session store.
type Session struct {
	SessionID          string    `json:"sessionId"`
	UserID             string    `json:"userId,omitempty"`
	History            []Message `json:"history"`
	LanguagePreference Language  `json:"languagePreference"`
	CreatedAt          time.Time `json:"createdAt"`
	LastActivityAt     time.Time `json:"lastActivityAt"`
	LowBandwidthMode   bool      `json:"lowBandwidthMode"`
}
