package asset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCleaner(c *Cleaner) chan struct{} {
	done := make(chan struct{})
	go func() {
		c.Run()
		close(done)
	}()
	return done
}

func TestCleanerProcessesScheduledDeletions(t *testing.T) {
	store := &fakeStore{}
	c := NewCleaner(store, 16)
	done := runCleaner(c)

	c.Schedule(Deletion{PublicID: "cover_1", ResourceType: ResourceImage})
	c.Schedule(Deletion{PublicID: "video_2", ResourceType: ResourceVideo})
	c.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleaner did not drain")
	}

	assert.ElementsMatch(t, []Deletion{
		{PublicID: "cover_1", ResourceType: ResourceImage},
		{PublicID: "video_2", ResourceType: ResourceVideo},
	}, store.deleted())
}

func TestCleanerIgnoresEmptyPublicID(t *testing.T) {
	store := &fakeStore{}
	c := NewCleaner(store, 1)
	done := runCleaner(c)

	c.Schedule(Deletion{PublicID: "", ResourceType: ResourceImage})
	c.Close()
	<-done
	assert.Empty(t, store.deleted())
}

func TestCleanerSurvivesDeleteFailure(t *testing.T) {
	store := &fakeStore{failDel: true}
	c := NewCleaner(store, 16)
	done := runCleaner(c)

	c.Schedule(Deletion{PublicID: "gone_1", ResourceType: ResourceImage})
	c.Schedule(Deletion{PublicID: "gone_2", ResourceType: ResourceImage})
	c.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleaner stopped draining after a failure")
	}
}

func TestCleanerDropsWhenQueueFull(t *testing.T) {
	store := &fakeStore{}
	// Run is not started, so the queue fills up immediately.
	c := NewCleaner(store, 1)
	c.Schedule(Deletion{PublicID: "kept", ResourceType: ResourceImage})
	c.Schedule(Deletion{PublicID: "dropped", ResourceType: ResourceImage})

	done := runCleaner(c)
	c.Close()
	<-done

	require.Len(t, store.deleted(), 1)
	assert.Equal(t, "kept", store.deleted()[0].PublicID)
}
