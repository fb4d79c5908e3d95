package zoned

import (
	"testing"
	"time"
)

func TestRCUDomainSynchronizeWaitsForReaders(t *testing.T) {
	rcu := &RCUDomain{}

	release := rcu.ReadLock()

	done := make(chan struct{})
	go func() {
		rcu.Synchronize()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Synchronize returned while a reader still held the lock")
	case <-time.After(50 * time.Millisecond):
	}

	release()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Synchronize did not return after the reader released")
	}
}

func TestRCUDomainMultipleReaders(t *testing.T) {
	rcu := &RCUDomain{}

	release1 := rcu.ReadLock()
	release2 := rcu.ReadLock()

	release1()
	release2()

	done := make(chan struct{})
	go func() {
		rcu.Synchronize()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Synchronize should proceed once all readers have released")
	}
}
