package events

import (
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	before := time.Now()
	event := NewEvent(EventWorkflowUpdated, "wf-1", map[string]string{"name": "demo"})
	after := time.Now()

	if event.Type != EventWorkflowUpdated {
		t.Errorf("expected type %s, got %s", EventWorkflowUpdated, event.Type)
	}
	if event.WorkflowID != "wf-1" {
		t.Errorf("expected workflow ID wf-1, got %s", event.WorkflowID)
	}
	if event.Time.Before(before) || event.Time.After(after) {
		t.Errorf("event time %v not between %v and %v", event.Time, before, after)
	}
}

func TestMemoryPublisher_PublishAndSubscribe(t *testing.T) {
	pub := NewMemoryPublisher()
	defer pub.Close()

	ch := pub.Subscribe("wf-1")

	event := NewEvent(EventBlockValue, "wf-1", BlockValueUpdate{BlockID: "blk-1", SubBlockID: "url", Value: "https://example.com"})
	pub.Publish(event)

	select {
	case received := <-ch:
		if received.Type != EventBlockValue {
			t.Errorf("expected type %s, got %s", EventBlockValue, received.Type)
		}
		if received.WorkflowID != "wf-1" {
			t.Errorf("expected workflow ID wf-1, got %s", received.WorkflowID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for event")
	}
}

func TestMemoryPublisher_GlobalSubscriber(t *testing.T) {
	pub := NewMemoryPublisher()
	defer pub.Close()

	global := pub.Subscribe(GlobalWorkflowID)

	pub.Publish(NewEvent(EventWorkflowCreated, "wf-2", nil))

	select {
	case received := <-global:
		if received.WorkflowID != "wf-2" {
			t.Errorf("expected workflow ID wf-2, got %s", received.WorkflowID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("global subscriber should receive every workflow's events")
	}
}

func TestMemoryPublisher_Unsubscribe(t *testing.T) {
	pub := NewMemoryPublisher()
	defer pub.Close()

	ch := pub.Subscribe("wf-1")
	pub.Unsubscribe("wf-1", ch)

	if count := pub.SubscriberCount("wf-1"); count != 0 {
		t.Errorf("expected 0 subscribers after unsubscribe, got %d", count)
	}

	// Channel is closed after unsubscribe.
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
}

func TestMemoryPublisher_PublishAfterClose(t *testing.T) {
	pub := NewMemoryPublisher()
	ch := pub.Subscribe("wf-1")
	pub.Close()

	// Must not panic.
	pub.Publish(NewEvent(EventWorkflowUpdated, "wf-1", nil))

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after publisher close")
	}
}

func TestMemoryPublisher_FullBufferDoesNotBlock(t *testing.T) {
	pub := NewMemoryPublisher(WithBufferSize(1))
	defer pub.Close()

	pub.Subscribe("wf-1")

	done := make(chan struct{})
	go func() {
		// Second publish would block a naive implementation.
		pub.Publish(NewEvent(EventBlockValue, "wf-1", nil))
		pub.Publish(NewEvent(EventBlockValue, "wf-1", nil))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("publish blocked on a full subscriber buffer")
	}
}
