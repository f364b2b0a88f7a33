package cli

import (
	"context"

	"github.com/gabapcia/safewatch/internal/safetx"

	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type serviceMock struct {
	mock.Mock
}

func newServiceMock(t testingT) *serviceMock {
	m := &serviceMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *serviceMock) Start(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *serviceMock) PollOnce(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *serviceMock) Notify(ctx context.Context, eventType safetx.EventType, safeTxHash string) error {
	return m.Called(ctx, eventType, safeTxHash).Error(0)
}

func (m *serviceMock) Close() {
	m.Called()
}

type indexMock struct {
	mock.Mock
}

func newIndexMock(t testingT) *indexMock {
	m := &indexMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *indexMock) FetchAll(ctx context.Context) []safetx.TxSummary {
	return m.Called(ctx).Get(0).([]safetx.TxSummary)
}

func (m *indexMock) FetchLatest(ctx context.Context) []safetx.TxSummary {
	return m.Called(ctx).Get(0).([]safetx.TxSummary)
}

func (m *indexMock) FetchDetailed(ctx context.Context, safeTxHash string) (safetx.TxDetail[string], error) {
	args := m.Called(ctx, safeTxHash)
	return args.Get(0).(safetx.TxDetail[string]), args.Error(1)
}
