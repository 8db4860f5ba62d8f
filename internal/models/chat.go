package models

import "time"

// ChatContext carries everything one chat turn needs: the named user, the
// retrieved memories (bounded by chat_options.max_context_memories) and the
// raw query. It is consumed once and discarded after the response.
type ChatContext struct {
	UserID   string
	Memories []MemoryRecord
	Query    string
}

// SpeakerRole 定义了消息发送者的角色。
type SpeakerRole string

const (
	SpeakerUser  SpeakerRole = "user"  // 用户角色。
	SpeakerModel SpeakerRole = "model" // 模型角色。
)

// ConversationEvent 是会话消息进入记忆管道的载体，
// 由 Kafka 消费者或 API 层反序列化后交给 MemoryService。
type ConversationEvent struct {
	User      string      `json:"user"`
	Role      SpeakerRole `json:"role,omitempty"`
	Text      string      `json:"text"`
	Context   string      `json:"context,omitempty"`
	CreatedAt time.Time   `json:"created_at,omitempty"`
}
