package notifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taskflowhq/taskflow-api/internal/authz"
)

func tenant(id uint64) *uint64 {
	return &id
}

func TestPublishFiltersByTenant(t *testing.T) {
	p := NewPublisher(100*time.Millisecond, 10)
	defer p.Close()

	tenantA := p.Subscribe(ForTenant(authz.KindTask, 1))
	tenantB := p.Subscribe(ForTenant(authz.KindTask, 2))
	all := p.Subscribe(nil)

	p.Publish(Event{Kind: authz.KindTask, Op: OpCreate, TenantID: tenant(1), OwnerID: 10})
	p.Publish(Event{Kind: authz.KindTask, Op: OpUpdate, TenantID: tenant(2), OwnerID: 20})

	assert.Len(t, tenantA.C, 1)
	assert.Len(t, tenantB.C, 1)
	assert.Len(t, all.C, 2)

	got := <-tenantA.C
	assert.Equal(t, OpCreate, got.Op)
	assert.Equal(t, uint64(1), *got.TenantID)
}

func TestPublishFiltersByOwnerForPersonalResources(t *testing.T) {
	p := NewPublisher(100*time.Millisecond, 10)
	defer p.Close()

	owner := p.Subscribe(ForOwner(authz.KindProject, 10))

	// Personal resource of owner 10: matches.
	p.Publish(Event{Kind: authz.KindProject, Op: OpCreate, OwnerID: 10})
	// Tenant-scoped resource of the same owner: owner filter does not match.
	p.Publish(Event{Kind: authz.KindProject, Op: OpCreate, TenantID: tenant(1), OwnerID: 10})
	// Different kind: no match.
	p.Publish(Event{Kind: authz.KindTask, Op: OpCreate, OwnerID: 10})

	assert.Len(t, owner.C, 1)
}

func TestEventPayloadShape(t *testing.T) {
	p := NewPublisher(100*time.Millisecond, 10)
	defer p.Close()

	sub := p.Subscribe(ForTenant(authz.KindTask, 1))

	p.Publish(Event{Kind: authz.KindTask, Op: OpCreate, TenantID: tenant(1), After: "new"})
	p.Publish(Event{Kind: authz.KindTask, Op: OpDelete, TenantID: tenant(1), Before: "old"})

	created := <-sub.C
	assert.Nil(t, created.Before)
	assert.Equal(t, "new", created.After)

	deleted := <-sub.C
	assert.Equal(t, "old", deleted.Before)
	assert.Nil(t, deleted.After)
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	p := NewPublisher(10*time.Millisecond, 1)
	defer p.Close()

	slow := p.Subscribe(nil)

	// Fill the buffer, then publish more than it can hold. Publish must
	// return; overflow events for this subscriber are dropped.
	for i := 0; i < 5; i++ {
		p.Publish(Event{Kind: authz.KindTask, Op: OpCreate, TenantID: tenant(1)})
	}

	assert.Len(t, slow.C, 1)
}

func TestCloseTearsDownSubscriptions(t *testing.T) {
	p := NewPublisher(100*time.Millisecond, 10)

	sub := p.Subscribe(nil)
	p.Close()

	_, open := <-sub.C
	assert.False(t, open, "channel closed after publisher Close")

	// Closing the handle after publisher shutdown is a no-op.
	sub.Close()
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	p := NewPublisher(100*time.Millisecond, 10)
	defer p.Close()

	sub := p.Subscribe(nil)
	keep := p.Subscribe(nil)

	sub.Close()
	p.Publish(Event{Kind: authz.KindTask, Op: OpCreate, TenantID: tenant(1)})

	assert.Len(t, keep.C, 1)
	_, open := <-sub.C
	assert.False(t, open)
}
