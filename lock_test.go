package tl2

import "testing"

func TestVersionedLockObserveInitial(t *testing.T) {
	var l versionedLock
	locked, version := l.observe()
	if locked {
		t.Fatal("fresh lock should be unlocked")
	}
	if version != 0 {
		t.Fatalf("fresh lock version = %d, want 0", version)
	}
}

func TestVersionedLockTryAcquireExclusive(t *testing.T) {
	var l versionedLock
	if !l.tryAcquire() {
		t.Fatal("first acquire should succeed")
	}
	if l.tryAcquire() {
		t.Fatal("second acquire should fail while held")
	}
	locked, _ := l.observe()
	if !locked {
		t.Fatal("lock bit should be set")
	}
}

func TestVersionedLockReleasePreservesVersion(t *testing.T) {
	var l versionedLock
	l.publish(7)
	l.tryAcquire()
	l.release()
	locked, version := l.observe()
	if locked {
		t.Fatal("lock should be free after release")
	}
	if version != 7 {
		t.Fatalf("version after release = %d, want 7", version)
	}
}

func TestVersionedLockPublishClearsLockBit(t *testing.T) {
	var l versionedLock
	l.tryAcquire()
	l.publish(42)
	locked, version := l.observe()
	if locked {
		t.Fatal("publish should clear the lock bit")
	}
	if version != 42 {
		t.Fatalf("version = %d, want 42", version)
	}
}

func TestVersionedLockTestUnmodified(t *testing.T) {
	var l versionedLock
	l.publish(3)

	if !l.testUnmodified(3) {
		t.Fatal("version == rv should be unmodified")
	}
	if !l.testUnmodified(10) {
		t.Fatal("version < rv should be unmodified")
	}
	if l.testUnmodified(2) {
		t.Fatal("version > rv should be modified")
	}

	l.tryAcquire()
	if l.testUnmodified(1000) {
		t.Fatal("a locked stripe is never unmodified, regardless of rv")
	}
}

func TestGlobalClockMonotonic(t *testing.T) {
	var c globalClock
	if c.sample() != 0 {
		t.Fatal("fresh clock should start at 0")
	}
	prev := c.sample()
	for i := 0; i < 100; i++ {
		next := c.increment()
		if next <= prev {
			t.Fatalf("clock went backwards: %d -> %d", prev, next)
		}
		prev = next
	}
}
