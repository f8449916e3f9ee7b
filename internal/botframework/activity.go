// Package botframework is the chat transport: the Bot Framework Activity schema, a turn
// context that collects replies, the connector client that posts them back to the channel,
// and the adapter that runs one turn and handles turn errors.
package botframework

import (
	"encoding/json"
	"time"
)

// Activity types.
const (
	TypeMessage            = "message"
	TypeConversationUpdate = "conversationUpdate"
	TypeInvoke             = "invoke"
	TypeTrace              = "trace"
)

// ChannelEmulator is the channel id of the local Bot Framework Emulator.
const ChannelEmulator = "emulator"

type ChannelAccount struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	AADObjectID string `json:"aadObjectId,omitempty"`
	Role        string `json:"role,omitempty"`
}

type ConversationAccount struct {
	ID               string `json:"id"`
	Name             string `json:"name,omitempty"`
	ConversationType string `json:"conversationType,omitempty"`
	TenantID         string `json:"tenantId,omitempty"`
	IsGroup          bool   `json:"isGroup,omitempty"`
}

// Attachment carries a card. Content is marshalled as-is.
type Attachment struct {
	ContentType string `json:"contentType"`
	Content     any    `json:"content,omitempty"`
}

// Entity is an activity entity. Only mentions are interpreted.
type Entity struct {
	Type      string          `json:"type"`
	Mentioned *ChannelAccount `json:"mentioned,omitempty"`
	Text      string          `json:"text,omitempty"`
}

// Activity is the subset of the Bot Framework activity schema the bot reads and writes.
type Activity struct {
	Type         string              `json:"type"`
	ID           string              `json:"id,omitempty"`
	Timestamp    *time.Time          `json:"timestamp,omitempty"`
	ServiceURL   string              `json:"serviceUrl,omitempty"`
	ChannelID    string              `json:"channelId,omitempty"`
	From         ChannelAccount      `json:"from"`
	Conversation ConversationAccount `json:"conversation"`
	Recipient    ChannelAccount      `json:"recipient"`
	Text         string              `json:"text,omitempty"`
	TextFormat   string              `json:"textFormat,omitempty"`
	Locale       string              `json:"locale,omitempty"`
	ReplyToID    string              `json:"replyToId,omitempty"`
	Attachments  []Attachment        `json:"attachments,omitempty"`
	Entities     []Entity            `json:"entities,omitempty"`
	ChannelData  json.RawMessage     `json:"channelData,omitempty"`

	// Trace and card-submit payloads.
	Name      string `json:"name,omitempty"`
	Label     string `json:"label,omitempty"`
	ValueType string `json:"valueType,omitempty"`
	Value     any    `json:"value,omitempty"`
}

// NewReply returns an activity addressed back to the sender of in.
func NewReply(in *Activity, typ string) *Activity {
	return &Activity{
		Type:         typ,
		ServiceURL:   in.ServiceURL,
		ChannelID:    in.ChannelID,
		From:         in.Recipient,
		Recipient:    in.From,
		Conversation: in.Conversation,
		ReplyToID:    in.ID,
		Locale:       in.Locale,
	}
}

// NewTextReply returns a plain-text reply to in.
func NewTextReply(in *Activity, text string) *Activity {
	a := NewReply(in, TypeMessage)
	a.Text = text
	return a
}

// NewAttachmentReply returns a reply to in carrying one attachment.
func NewAttachmentReply(in *Activity, contentType string, content any) *Activity {
	a := NewReply(in, TypeMessage)
	a.Attachments = []Attachment{{ContentType: contentType, Content: content}}
	return a
}
