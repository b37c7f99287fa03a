package scheduler

import (
	"context"
	"testing"

	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFinder struct {
	parts []model.Part
	err   error
	calls int
}

func (f *stubFinder) FindOrphanParts(ctx context.Context) ([]model.Part, error) {
	f.calls++
	return f.parts, f.err
}

func TestOrphanAuditScheduler_RunOnce(t *testing.T) {
	finder := &stubFinder{parts: []model.Part{{ID: 3}, {ID: 7}}}
	s := NewOrphanAuditScheduler(finder, "0 3 * * *")

	count, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, finder.calls)

	finder.parts = nil
	count, err = s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOrphanAuditScheduler_RunOnceError(t *testing.T) {
	finder := &stubFinder{err: errors.New("connection reset")}
	s := NewOrphanAuditScheduler(finder, "0 3 * * *")

	_, err := s.RunOnce(context.Background())
	assert.EqualError(t, err, "connection reset")
}

func TestOrphanAuditScheduler_StartRejectsBadSpec(t *testing.T) {
	s := NewOrphanAuditScheduler(&stubFinder{}, "every night")
	assert.Error(t, s.Start())
}

func TestOrphanAuditScheduler_StartStop(t *testing.T) {
	s := NewOrphanAuditScheduler(&stubFinder{}, "@every 1h")
	require.NoError(t, s.Start())
	s.Stop()
}
