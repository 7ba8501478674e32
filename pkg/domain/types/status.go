package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// MessageStatus represents where a message sits in the triage lifecycle.
type MessageStatus string

const (
	StatusUnclassified MessageStatus = "unclassified"
	StatusClassified   MessageStatus = "classified"
	StatusApproved     MessageStatus = "approved"
	StatusActioned     MessageStatus = "actioned"
)

// IsValid checks if the message status is valid.
func (s MessageStatus) IsValid() bool {
	switch s {
	case StatusUnclassified, StatusClassified, StatusApproved, StatusActioned:
		return true
	default:
		return false
	}
}

// String returns the string representation of the message status.
func (s MessageStatus) String() string {
	return string(s)
}

// ParseMessageStatus parses a string into a MessageStatus.
func ParseMessageStatus(s string) (MessageStatus, error) {
	status := MessageStatus(s)
	if !status.IsValid() {
		return "", goerr.New("invalid message status", goerr.V("status", s))
	}
	return status, nil
}

// ClassifierSource identifies which stage produced a classification.
type ClassifierSource string

const (
	SourceRule     ClassifierSource = "rule"
	SourceOverride ClassifierSource = "override"
	SourceSemantic ClassifierSource = "semantic"
	SourceManual   ClassifierSource = "manual"
)

// IsValid checks if the classifier source is valid.
func (s ClassifierSource) IsValid() bool {
	switch s {
	case SourceRule, SourceOverride, SourceSemantic, SourceManual:
		return true
	default:
		return false
	}
}

// String returns the string representation of the classifier source.
func (s ClassifierSource) String() string {
	return string(s)
}

// Importance is the importance flag carried by the message source.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceNormal Importance = "normal"
	ImportanceHigh   Importance = "high"
)

// IsValid checks if the importance flag is valid.
func (i Importance) IsValid() bool {
	switch i {
	case ImportanceLow, ImportanceNormal, ImportanceHigh:
		return true
	default:
		return false
	}
}

// String returns the string representation of the importance flag.
func (i Importance) String() string {
	return string(i)
}
