package model

import (
	"strings"
	"time"

	"github.com/harleysato/mailtriage/pkg/domain/types"
)

// Recipient is a single entry in a message's To or CC list.
type Recipient struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// Message is an inbound message as supplied by the (out of scope) message
// source, plus the triage fields this pipeline mutates in place.
type Message struct {
	ID             int64
	MessageID      string // source-assigned identifier, unique
	FromAddress    string
	FromName       string
	Subject        string
	BodyPreview    string
	Body           string
	ReceivedAt     time.Time
	Importance     types.Importance
	ConversationID string
	HasAttachments bool
	ToRecipients   []Recipient
	CcRecipients   []Recipient
	Headers        map[string]string

	Category   types.Category
	Confidence float64
	Score      *float64
	DueDate    *time.Time
	Status     types.MessageStatus
}

// SenderDomain returns the domain part of the sender address, lowercased.
func (m *Message) SenderDomain() string {
	return AddressDomain(m.FromAddress)
}

// IsSoleRecipient reports whether addr is the only To recipient.
func (m *Message) IsSoleRecipient(addr string) bool {
	if len(m.ToRecipients) != 1 {
		return false
	}
	return strings.EqualFold(m.ToRecipients[0].Address, addr)
}

// InToRecipients reports whether addr appears in the To list.
func (m *Message) InToRecipients(addr string) bool {
	for _, r := range m.ToRecipients {
		if strings.EqualFold(r.Address, addr) {
			return true
		}
	}
	return false
}

// InCcOnly reports whether addr appears in the CC list but not in the To list.
func (m *Message) InCcOnly(addr string) bool {
	if m.InToRecipients(addr) {
		return false
	}
	for _, r := range m.CcRecipients {
		if strings.EqualFold(r.Address, addr) {
			return true
		}
	}
	return false
}

// AddressDomain extracts the domain part of an email address, lowercased.
// Returns an empty string when the address has no domain.
func AddressDomain(addr string) string {
	idx := strings.LastIndex(addr, "@")
	if idx < 0 || idx == len(addr)-1 {
		return ""
	}
	return strings.ToLower(addr[idx+1:])
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	clone := *m
	if m.ToRecipients != nil {
		clone.ToRecipients = append([]Recipient(nil), m.ToRecipients...)
	}
	if m.CcRecipients != nil {
		clone.CcRecipients = append([]Recipient(nil), m.CcRecipients...)
	}
	if m.Headers != nil {
		clone.Headers = make(map[string]string, len(m.Headers))
		for k, v := range m.Headers {
			clone.Headers[k] = v
		}
	}
	if m.Score != nil {
		score := *m.Score
		clone.Score = &score
	}
	if m.DueDate != nil {
		due := *m.DueDate
		clone.DueDate = &due
	}
	return &clone
}
