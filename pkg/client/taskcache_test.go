package client

import (
	"reflect"
	"testing"
)

func task(id, title string) Task {
	return Task{ID: id, Title: title, Priority: "medium", Status: "pending"}
}

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestTaskCacheAddDeleteRoundTrip(t *testing.T) {
	c := NewTaskCache()
	c.SetTasks([]Task{task("a", "A"), task("b", "B")})
	before := c.Tasks()

	c.Add(task("c", "C"))
	if got := ids(c.Tasks()); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Fatalf("after add: %v, want newest first", got)
	}

	c.Delete("c")
	if !reflect.DeepEqual(c.Tasks(), before) {
		t.Errorf("add then delete should round-trip: %v", ids(c.Tasks()))
	}
}

func TestTaskCacheUpdate(t *testing.T) {
	a := task("a", "A")
	b := task("b", "B")
	c := NewTaskCache()
	c.SetTasks([]Task{a, b})

	changed := a
	changed.Title = "x"
	c.Update(changed)

	got := c.Tasks()
	if got[0].ID != "a" || got[0].Title != "x" {
		t.Errorf("updated element = %+v, want title x in place", got[0])
	}
	if !reflect.DeepEqual(got[1], b) {
		t.Errorf("untouched element changed: %+v", got[1])
	}

	// Unknown ids are ignored.
	c.Update(task("ghost", "Boo"))
	if len(c.Tasks()) != 2 {
		t.Error("updating an unknown id must not grow the list")
	}
}

func TestTaskCacheDeleteUnknown(t *testing.T) {
	c := NewTaskCache()
	c.SetTasks([]Task{task("a", "A")})
	c.Delete("missing")
	if len(c.Tasks()) != 1 {
		t.Error("deleting an unknown id must be a no-op")
	}
}

func TestTaskCacheCopiesState(t *testing.T) {
	src := []Task{task("a", "A")}
	c := NewTaskCache()
	c.SetTasks(src)

	src[0].Title = "mutated"
	if c.Tasks()[0].Title != "A" {
		t.Error("SetTasks must copy the input slice")
	}

	snapshot := c.Tasks()
	snapshot[0].Title = "also mutated"
	if c.Tasks()[0].Title != "A" {
		t.Error("Tasks must return a copy")
	}
}

func TestTaskCacheSearchQuery(t *testing.T) {
	c := NewTaskCache()
	if c.SearchQuery() != "" {
		t.Error("search query should start empty")
	}
	c.SetSearchQuery("deploy")
	if c.SearchQuery() != "deploy" {
		t.Errorf("search query = %q, want deploy", c.SearchQuery())
	}
}
