package spotify

import (
	"testing"
	"time"
)

func TestClientReusePerToken(t *testing.T) {
	m := NewInstanceManager(time.Hour)

	a := m.clientFor("tok1")
	b := m.clientFor("tok1")
	if a != b {
		t.Fatal("same token produced two clients")
	}
	if m.clientFor("tok2") == a {
		t.Fatal("different tokens share a client")
	}
	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
}

func TestEvictDropsToken(t *testing.T) {
	m := NewInstanceManager(time.Hour)
	a := m.clientFor("tok")
	m.Evict("tok")
	if m.Len() != 0 {
		t.Fatalf("Len = %d after evict, want 0", m.Len())
	}
	if m.clientFor("tok") == a {
		t.Fatal("evicted client came back")
	}
}

func TestAgedOutInstanceReplaced(t *testing.T) {
	m := NewInstanceManager(20 * time.Millisecond)
	a := m.clientFor("tok")
	time.Sleep(50 * time.Millisecond)
	if m.clientFor("tok") == a {
		t.Fatal("aged-out client was reused")
	}
}

func TestCleanupRemovesAgedEntries(t *testing.T) {
	m := NewInstanceManager(20 * time.Millisecond)
	m.clientFor("old")
	time.Sleep(50 * time.Millisecond)
	m.clientFor("new")

	m.cleanup()
	if m.Len() != 1 {
		t.Fatalf("Len = %d after cleanup, want only the fresh entry", m.Len())
	}
	if _, ok := m.instances["new"]; !ok {
		t.Fatal("cleanup removed the fresh entry")
	}
}
