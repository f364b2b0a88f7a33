package safewatch

import (
	"context"

	"github.com/gabapcia/safewatch/internal/safetx"

	"github.com/stretchr/testify/mock"
)

type indexMock struct {
	mock.Mock
}

func newIndexMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *indexMock {
	m := &indexMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *indexMock) FetchAll(ctx context.Context) []safetx.TxSummary {
	args := m.Called(ctx)
	return args.Get(0).([]safetx.TxSummary)
}

func (m *indexMock) FetchLatest(ctx context.Context) []safetx.TxSummary {
	args := m.Called(ctx)
	return args.Get(0).([]safetx.TxSummary)
}

func (m *indexMock) FetchDetailed(ctx context.Context, safeTxHash string) (safetx.TxDetail[string], error) {
	args := m.Called(ctx, safeTxHash)
	return args.Get(0).(safetx.TxDetail[string]), args.Error(1)
}

type notifierMock struct {
	mock.Mock
}

func newNotifierMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *notifierMock {
	m := &notifierMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *notifierMock) Send(ctx context.Context, event safetx.Event) error {
	return m.Called(ctx, event).Error(0)
}

type detectorMock struct {
	mock.Mock
}

func (m *detectorMock) IsMalicious(ctx context.Context, chainPrefix, safe string, tx safetx.TxDetail[string]) (bool, error) {
	args := m.Called(ctx, chainPrefix, safe, tx)
	return args.Bool(0), args.Error(1)
}

type stateStorageMock struct {
	mock.Mock
}

func (m *stateStorageMock) Load(ctx context.Context, chainPrefix, safe string) (State, error) {
	args := m.Called(ctx, chainPrefix, safe)
	state, _ := args.Get(0).(State)
	return state, args.Error(1)
}

func (m *stateStorageMock) Save(ctx context.Context, chainPrefix, safe string, summaries []safetx.TxSummary) error {
	return m.Called(ctx, chainPrefix, safe, summaries).Error(0)
}
