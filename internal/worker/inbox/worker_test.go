package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/corray333/order-lifecycle/internal/service/models/inbox"
	"github.com/corray333/order-lifecycle/internal/service/models/notification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

type serviceMock struct {
	mock.Mock
}

func (m *serviceMock) Deliver(ctx context.Context, msg notification.Message) error {
	return m.Called(ctx, msg).Error(0)
}

var fixedNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestWorker() (*Worker, *inboxRepoMock, *serviceMock) {
	repo := &inboxRepoMock{}
	svc := &serviceMock{}
	w := NewWorker(repo, svc)
	w.now = func() time.Time { return fixedNow }

	return w, repo, svc
}

func payload(t *testing.T) (notification.Message, []byte) {
	t.Helper()
	msg := notification.NewMessage(uuid.New(), "a@example.com", notification.KindConfirmed, fixedNow)
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	return msg, data
}

func TestProcessMessages_DeliversAndDeletes(t *testing.T) {
	w, repo, svc := newTestWorker()
	msg, data := payload(t)

	repo.On("GetPendingMessages", mock.Anything, 100).
		Return([]inbox.InboxMessage{{ID: 7, MessageID: msg.ID.String(), Payload: data, MaxRetries: 5}}, nil).Once()
	svc.On("Deliver", mock.Anything, mock.MatchedBy(func(n notification.Message) bool {
		return n.ID == msg.ID && n.OrderID == msg.OrderID
	})).Return(nil).Once()
	repo.On("Delete", mock.Anything, int64(7)).Return(nil).Once()

	w.processMessages(context.Background())

	repo.AssertExpectations(t)
	svc.AssertExpectations(t)
}

func TestProcessMessages_SchedulesRetry(t *testing.T) {
	w, repo, svc := newTestWorker()
	_, data := payload(t)

	repo.On("GetPendingMessages", mock.Anything, 100).
		Return([]inbox.InboxMessage{{ID: 3, Payload: data, RetryCount: 0, MaxRetries: 5}}, nil).Once()
	svc.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	repo.On("UpdateRetry", mock.Anything, int64(3), 1, "db down", fixedNow.Add(60*time.Second)).Return(nil).Once()

	w.processMessages(context.Background())

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProcessMessages_MalformedPayload(t *testing.T) {
	w, repo, svc := newTestWorker()

	repo.On("GetPendingMessages", mock.Anything, 100).Return([]inbox.InboxMessage{
		{ID: 1, Payload: []byte("{"), RetryCount: 0, MaxRetries: 3},
		{ID: 2, Payload: []byte("{"), RetryCount: 2, MaxRetries: 3},
	}, nil).Once()
	repo.On("UpdateRetry", mock.Anything, int64(1), 1, mock.Anything, fixedNow.Add(60*time.Second)).Return(nil).Once()
	repo.On("Delete", mock.Anything, int64(2)).Return(nil).Once()

	w.processMessages(context.Background())

	repo.AssertExpectations(t)
	svc.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}
