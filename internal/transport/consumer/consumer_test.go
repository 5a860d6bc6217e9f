package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/corray333/order-lifecycle/internal/service/models/inbox"
	"github.com/corray333/order-lifecycle/internal/service/models/notification"
	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type acknowledger struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *acknowledger) Ack(uint64, bool) error {
	a.acked++

	return nil
}

func (a *acknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	a.requeue = requeue

	return nil
}

func (a *acknowledger) Reject(uint64, bool) error {
	return nil
}

type serviceMock struct {
	mock.Mock
}

func (m *serviceMock) Deliver(ctx context.Context, msg notification.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type inboxRepoMock struct {
	mock.Mock
}

func (m *inboxRepoMock) Insert(ctx context.Context, msg inbox.InboxMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *inboxRepoMock) GetPendingMessages(ctx context.Context, limit int) ([]inbox.InboxMessage, error) {
	args := m.Called(ctx, limit)

	return args.Get(0).([]inbox.InboxMessage), args.Error(1)
}

func (m *inboxRepoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *inboxRepoMock) UpdateRetry(ctx context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error {
	return m.Called(ctx, id, retryCount, lastError, nextRetryAt).Error(0)
}

var fixedNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestConsumer() (*Consumer, *serviceMock, *inboxRepoMock) {
	svc := &serviceMock{}
	repo := &inboxRepoMock{}

	return &Consumer{
		service:    svc,
		inboxRepo:  repo,
		queue:      amqp.Queue{Name: defaultQueueName},
		maxRetries: 5,
		now:        func() time.Time { return fixedNow },
	}, svc, repo
}

func delivery(t *testing.T, body []byte) (amqp.Delivery, *acknowledger) {
	t.Helper()
	ack := &acknowledger{}

	return amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  1,
		MessageId:    "m-1",
		RoutingKey:   defaultQueueName,
		ContentType:  "application/json",
		Body:         body,
	}, ack
}

func validBody(t *testing.T) (notification.Message, []byte) {
	t.Helper()
	msg := notification.NewMessage(uuid.New(), "a@example.com", notification.KindConfirmed, fixedNow)
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	return msg, body
}

func TestProcessMessage_Delivered(t *testing.T) {
	c, svc, repo := newTestConsumer()
	msg, body := validBody(t)
	d, ack := delivery(t, body)

	svc.On("Deliver", mock.Anything, mock.MatchedBy(func(n notification.Message) bool {
		return n.ID == msg.ID
	})).Return(nil).Once()

	c.processMessage(context.Background(), d)

	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.nacked)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestProcessMessage_FailureGoesToInbox(t *testing.T) {
	c, svc, repo := newTestConsumer()
	_, body := validBody(t)
	d, ack := delivery(t, body)

	svc.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(m inbox.InboxMessage) bool {
		return m.MessageID == "m-1" &&
			m.QueueName == defaultQueueName &&
			string(m.Payload) == string(body) &&
			m.MaxRetries == 5 &&
			m.NextRetryAt.Equal(fixedNow.Add(30*time.Second))
	})).Return(nil).Once()

	c.processMessage(context.Background(), d)

	assert.Equal(t, 1, ack.acked)
	repo.AssertExpectations(t)
}

func TestProcessMessage_MalformedGoesToInbox(t *testing.T) {
	c, svc, repo := newTestConsumer()
	d, ack := delivery(t, []byte("garbage"))

	repo.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()

	c.processMessage(context.Background(), d)

	assert.Equal(t, 1, ack.acked)
	svc.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestProcessMessage_InboxFailureRequeues(t *testing.T) {
	c, svc, repo := newTestConsumer()
	_, body := validBody(t)
	d, ack := delivery(t, body)

	svc.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	c.processMessage(context.Background(), d)

	assert.Zero(t, ack.acked)
	assert.Equal(t, 1, ack.nacked)
	assert.True(t, ack.requeue)
}

func TestServe_ShutdownWaitsForInFlightMessages(t *testing.T) {
	c, svc, repo := newTestConsumer()
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	msg, body := validBody(t)
	d, ack := delivery(t, body)

	started := make(chan struct{})
	release := make(chan struct{})
	var deliverErr error
	svc.On("Deliver", mock.Anything, mock.MatchedBy(func(n notification.Message) bool {
		return n.ID == msg.ID
	})).Run(func(args mock.Arguments) {
		close(started)
		<-release
		deliverErr = args.Get(0).(context.Context).Err()
	}).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs := make(chan amqp.Delivery, 1)
	msgs <- d
	served := make(chan error, 1)
	go func() {
		served <- c.serve(ctx, msgs, 2)
	}()

	<-started
	shutdownDone := make(chan struct{})
	go func() {
		_ = c.Shutdown()
		close(shutdownDone)
	}()

	cancel()
	select {
	case <-shutdownDone:
		t.Fatal("Shutdown returned while a message was still being delivered")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-shutdownDone
	require.NoError(t, <-served)

	assert.NoError(t, deliverErr, "in-flight delivery must not see a cancelled context")
	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, 0, ack.nacked)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	svc.AssertExpectations(t)
}
