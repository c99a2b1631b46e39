package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/prospector/internal/entity"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, msg)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyMeetingSet(ctx context.Context, event ProspectEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// ============ PRODUCER ============

func TestPublishProspectEventRoutesByType(t *testing.T) {
	pub := new(MockPublisher)
	producer := NewProducer(pub)

	event := ProspectEvent{
		Type:       EventProspectLogged,
		ProspectID: "p-1",
		FirstName:  "Jane",
		Company:    "Acme",
		Email:      "jane@acme.com",
		Status:     "Not Contacted",
		OccurredAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	pub.On("PublishWithContext", mock.Anything, ExchangeName, EventProspectLogged, mock.MatchedBy(func(msg amqp.Publishing) bool {
		var got ProspectEvent
		if err := json.Unmarshal(msg.Body, &got); err != nil {
			return false
		}
		return msg.ContentType == "application/json" &&
			msg.DeliveryMode == amqp.Persistent &&
			got.ProspectID == "p-1" &&
			got.Company == "Acme"
	})).Return(nil)

	err := producer.PublishProspectEvent(context.Background(), event)

	assert.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestPublishProspectEventWrapsError(t *testing.T) {
	pub := new(MockPublisher)
	producer := NewProducer(pub)
	brokerErr := errors.New("channel closed")

	pub.On("PublishWithContext", mock.Anything, ExchangeName, EventProspectRemoved, mock.Anything).Return(brokerErr)

	err := producer.PublishProspectEvent(context.Background(), ProspectEvent{Type: EventProspectRemoved})

	assert.ErrorIs(t, err, brokerErr)
}

func TestProspectEventJSONKeys(t *testing.T) {
	body, err := json.Marshal(ProspectEvent{
		Type:           EventStatusChanged,
		ProspectID:     "p-1",
		FirstName:      "Jane",
		Company:        "Acme",
		Email:          "jane@acme.com",
		Status:         "Replied",
		PreviousStatus: "Contacted",
	})
	require.NoError(t, err)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &data))

	for _, field := range []string{"type", "prospect_id", "first_name", "company", "email", "status", "previous_status", "occurred_at"} {
		assert.Contains(t, data, field, "field %s is missing", field)
	}
	assert.NotContains(t, data, "last_name")
}

// ============ WORKER ============

func meetingSetBody(t *testing.T, previous string) []byte {
	body, err := json.Marshal(ProspectEvent{
		Type:           EventStatusChanged,
		ProspectID:     "p-1",
		FirstName:      "Jane",
		Company:        "Acme",
		Email:          "jane@acme.com",
		Status:         string(entity.StatusMeetingSet),
		PreviousStatus: previous,
	})
	require.NoError(t, err)
	return body
}

func TestWorkerNotifiesOnMeetingSet(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("NotifyMeetingSet", mock.Anything, mock.MatchedBy(func(e ProspectEvent) bool {
		return e.ProspectID == "p-1"
	})).Return(nil)

	w := NewWorker(nil, notifier)
	err := w.HandleMessage(context.Background(), meetingSetBody(t, string(entity.StatusReplied)))

	assert.NoError(t, err)
	notifier.AssertNumberOfCalls(t, "NotifyMeetingSet", 1)
}

func TestWorkerSkipsUnchangedMeetingStatus(t *testing.T) {
	notifier := new(MockNotifier)

	w := NewWorker(nil, notifier)
	err := w.HandleMessage(context.Background(), meetingSetBody(t, string(entity.StatusMeetingSet)))

	assert.NoError(t, err)
	notifier.AssertNotCalled(t, "NotifyMeetingSet", mock.Anything, mock.Anything)
}

func TestWorkerIgnoresOtherStatuses(t *testing.T) {
	for _, status := range []string{string(entity.StatusClosed), "meeting set", "Meeting  Set"} {
		t.Run(status, func(t *testing.T) {
			notifier := new(MockNotifier)
			body, _ := json.Marshal(ProspectEvent{
				Type:           EventStatusChanged,
				Status:         status,
				PreviousStatus: string(entity.StatusReplied),
			})

			w := NewWorker(nil, notifier)

			assert.NoError(t, w.HandleMessage(context.Background(), body))
			notifier.AssertNotCalled(t, "NotifyMeetingSet", mock.Anything, mock.Anything)
		})
	}
}

func TestWorkerNotifierFailure(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("NotifyMeetingSet", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	w := NewWorker(nil, notifier)
	err := w.HandleMessage(context.Background(), meetingSetBody(t, string(entity.StatusContacted)))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
}

func TestWorkerRejectsMalformedJSON(t *testing.T) {
	w := NewWorker(nil, nil)
	assert.Error(t, w.HandleMessage(context.Background(), []byte("{not json")))
}

func TestWorkerWithoutNotifier(t *testing.T) {
	w := NewWorker(nil, nil)
	assert.NoError(t, w.HandleMessage(context.Background(), meetingSetBody(t, string(entity.StatusReplied))))
}

type fakeConsumer struct {
	deliveries chan amqp.Delivery
	err        error
}

func (f *fakeConsumer) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, f.err
}

func TestWorkerStartStopsWhenChannelCloses(t *testing.T) {
	c := &fakeConsumer{deliveries: make(chan amqp.Delivery)}
	close(c.deliveries)

	w := NewWorker(c, nil)
	assert.NoError(t, w.Start(context.Background(), QueueName))
}

func TestWorkerStartStopsOnCancel(t *testing.T) {
	c := &fakeConsumer{deliveries: make(chan amqp.Delivery)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWorker(c, nil)
	assert.NoError(t, w.Start(ctx, QueueName))
}

func TestWorkerStartConsumeError(t *testing.T) {
	c := &fakeConsumer{err: errors.New("no channel")}

	w := NewWorker(c, nil)
	assert.Error(t, w.Start(context.Background(), QueueName))
}
