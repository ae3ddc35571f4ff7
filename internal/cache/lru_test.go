package cache

import (
	"testing"

	"github.com/devtrace/devtrace/internal/models"
)

func TestProjectCache_SetGet(t *testing.T) {
	pc, err := New(10)
	if err != nil {
		t.Fatal(err)
	}

	p := &models.Project{ID: 1, Name: "Blog"}
	pc.Set("key-a", p)

	got, found := pc.Get("key-a")
	if !found {
		t.Fatal("expected cache hit")
	}
	if got.ID != 1 {
		t.Errorf("ID = %d, want 1", got.ID)
	}
}

func TestProjectCache_Miss(t *testing.T) {
	pc, _ := New(10)
	if _, found := pc.Get("missing"); found {
		t.Error("expected cache miss")
	}
}

func TestProjectCache_Invalidate(t *testing.T) {
	pc, _ := New(10)
	pc.Set("key-a", &models.Project{ID: 1})
	pc.Invalidate("key-a")
	if _, found := pc.Get("key-a"); found {
		t.Error("expected miss after invalidation")
	}
}

func TestProjectCache_EvictsAtCapacity(t *testing.T) {
	pc, _ := New(2)
	pc.Set("a", &models.Project{ID: 1})
	pc.Set("b", &models.Project{ID: 2})
	pc.Set("c", &models.Project{ID: 3})

	if _, found := pc.Get("a"); found {
		t.Error("oldest entry should have been evicted")
	}
	if _, found := pc.Get("c"); !found {
		t.Error("newest entry should be present")
	}
}

func TestNew_InvalidSize(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero size")
	}
}
