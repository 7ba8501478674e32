// Package memory provides an in-memory repository backend. It is the default
// for tests and for one-shot pipeline runs that do not need persistence.
package memory

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/harleysato/mailtriage/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = goerr.New("not found")

type Memory struct {
	messages *messageRepository
	events   *classificationEventRepository
	vetoes   *overrideEventRepository
	urgency  *urgencyRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		messages: newMessageRepository(),
		events:   newClassificationEventRepository(),
		vetoes:   newOverrideEventRepository(),
		urgency:  newUrgencyRepository(),
	}
}

func (m *Memory) Message() interfaces.MessageRepository {
	return m.messages
}

func (m *Memory) ClassificationEvent() interfaces.ClassificationEventRepository {
	return m.events
}

func (m *Memory) OverrideEvent() interfaces.OverrideEventRepository {
	return m.vetoes
}

func (m *Memory) Urgency() interfaces.UrgencyRepository {
	return m.urgency
}

func (m *Memory) Close() error {
	return nil
}
