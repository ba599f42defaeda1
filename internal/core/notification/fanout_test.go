package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type capture struct {
	mu   sync.Mutex
	sent []*Notification
}

func (c *capture) create(_ context.Context, n *Notification) (*Notification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, n)
	return n, nil
}

func (c *capture) recipients() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.sent))
	for _, n := range c.sent {
		ids = append(ids, n.RecipientID)
	}
	return ids
}

func TestFanOut_Recipients_DedupesAndExcludesActor(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := NewMockRecipientResolver(ctrl)
	resolver.EXPECT().Managers(gomock.Any()).Return([]string{"mgr-2", "mgr-1", "both"}, nil)
	resolver.EXPECT().Admins(gomock.Any()).Return([]string{"both", "adm-1", ""}, nil)

	f := NewFanOut(NewMockRepository(ctrl), resolver, zerolog.Nop(), Options{})

	got, err := f.Recipients(context.Background(), Audience{Managers: true, Admins: true, Subject: "emp-9", ExcludeActor: "mgr-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"adm-1", "both", "emp-9", "mgr-2"}, got)
}

func TestFanOut_Recipients_SubjectOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := NewFanOut(NewMockRepository(ctrl), NewMockRecipientResolver(ctrl), zerolog.Nop(), Options{})

	got, err := f.Recipients(context.Background(), Audience{Subject: "emp-1", ExcludeActor: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"emp-1"}, got)
}

func TestFanOut_Deliver_OnePerRecipient(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := NewMockRecipientResolver(ctrl)
	repo := NewMockRepository(ctrl)
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	sink := &capture{}

	resolver.EXPECT().Managers(gomock.Any()).Return([]string{"mgr-1"}, nil)
	resolver.EXPECT().Admins(gomock.Any()).Return([]string{"adm-1", "adm-2"}, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(sink.create).Times(3)

	f := NewFanOut(repo, resolver, zerolog.Nop(), Options{Concurrency: 2, Clock: fixedClock{now: now}})
	title := faker.Sentence()
	payload := map[string]any{"resignation_id": faker.UUIDHyphenated()}

	delivered, err := f.Deliver(context.Background(), Event{
		Type:     TypeResignationApproved,
		Title:    title,
		Message:  faker.Paragraph(),
		Payload:  payload,
		Audience: Audience{Managers: true, Admins: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, delivered)
	assert.ElementsMatch(t, []string{"mgr-1", "adm-1", "adm-2"}, sink.recipients())

	for _, n := range sink.sent {
		assert.NotEmpty(t, n.ID)
		assert.Equal(t, title, n.Title)
		assert.Equal(t, TypeResignationApproved, n.Type)
		assert.False(t, n.Read)
		assert.True(t, n.CreatedAt.Equal(now))
		assert.Equal(t, payload["resignation_id"], n.Payload["resignation_id"])
	}

	payload["resignation_id"] = "mutated"
	assert.NotEqual(t, "mutated", sink.sent[0].Payload["resignation_id"])
}

func TestFanOut_Deliver_ContinuesAfterFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := NewMockRecipientResolver(ctrl)
	repo := NewMockRepository(ctrl)
	sink := &capture{}
	writeErr := errors.New("connection reset")

	resolver.EXPECT().Admins(gomock.Any()).Return([]string{"adm-1", "adm-2", "adm-3"}, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, n *Notification) (*Notification, error) {
		if n.RecipientID == "adm-2" {
			return nil, writeErr
		}
		return sink.create(ctx, n)
	}).Times(3)

	f := NewFanOut(repo, resolver, zerolog.Nop(), Options{})

	delivered, err := f.Deliver(context.Background(), Event{Type: TypeEmployeeReinstated, Audience: Audience{Admins: true}})
	require.Error(t, err)
	assert.ErrorIs(t, err, writeErr)
	assert.Contains(t, err.Error(), "adm-2")
	assert.Equal(t, 2, delivered)
	assert.ElementsMatch(t, []string{"adm-1", "adm-3"}, sink.recipients())
}

func TestFanOut_Deliver_PartialResolution(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := NewMockRecipientResolver(ctrl)
	repo := NewMockRepository(ctrl)
	sink := &capture{}
	lookupErr := errors.New("managers query failed")

	resolver.EXPECT().Managers(gomock.Any()).Return(nil, lookupErr)
	resolver.EXPECT().Admins(gomock.Any()).Return([]string{"adm-1"}, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(sink.create).Times(1)

	f := NewFanOut(repo, resolver, zerolog.Nop(), Options{})

	delivered, err := f.Deliver(context.Background(), Event{Type: TypeResignationApproved, Audience: Audience{Managers: true, Admins: true}})
	assert.ErrorIs(t, err, lookupErr)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, []string{"adm-1"}, sink.recipients())
}

func TestFanOut_Publish_SwallowsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("sink down")).Times(1)

	f := NewFanOut(repo, NewMockRecipientResolver(ctrl), zerolog.Nop(), Options{})

	assert.NotPanics(t, func() {
		f.Publish(context.Background(), Event{Type: TypeLeaveRejected, Audience: Audience{Subject: "emp-1"}})
	})
}

func TestFanOut_Publish_AsyncSurvivesCallerCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	sink := &capture{}
	release := make(chan struct{})

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, n *Notification) (*Notification, error) {
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return sink.create(ctx, n)
	}).Times(1)

	f := NewFanOut(repo, NewMockRecipientResolver(ctrl), zerolog.Nop(), Options{Async: true, Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	f.Publish(ctx, Event{Type: TypeLeaveApproved, Audience: Audience{Subject: "emp-1"}})
	cancel()
	close(release)
	f.Wait()

	assert.Equal(t, []string{"emp-1"}, sink.recipients())
}
