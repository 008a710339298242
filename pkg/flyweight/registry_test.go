package flyweight

import (
	"errors"
	"testing"
)

type fakeUser struct {
	name      string
	playcount int
}

func userKey(t *testing.T, name string) Key {
	t.Helper()
	key, err := NewKey("user", map[string]string{"name": name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return key
}

func TestGetOrCreate_SameIdentitySameInstance(t *testing.T) {
	reg := NewRegistry()

	a := GetOrCreate(reg, userKey(t, "alice"), func() *fakeUser {
		return &fakeUser{name: "alice", playcount: 10}
	})
	b := GetOrCreate(reg, userKey(t, "alice"), func() *fakeUser {
		return &fakeUser{name: "alice", playcount: 99}
	})

	if a != b {
		t.Error("expected the same instance for equal identity")
	}
	// The second builder must not have run.
	if a.playcount != 10 {
		t.Errorf("expected first registration to win, got playcount %d", a.playcount)
	}
	if reg.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", reg.Len())
	}
}

func TestGetOrCreate_DistinctIdentities(t *testing.T) {
	reg := NewRegistry()

	a := GetOrCreate(reg, userKey(t, "alice"), func() *fakeUser { return &fakeUser{name: "alice"} })
	b := GetOrCreate(reg, userKey(t, "bob"), func() *fakeUser { return &fakeUser{name: "bob"} })

	if a == b {
		t.Error("expected distinct instances for distinct identities")
	}
	if reg.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", reg.Len())
	}
}

func TestGetOrCreate_KindsDoNotCollide(t *testing.T) {
	reg := NewRegistry()

	userK, err := NewKey("user", map[string]string{"name": "x"})
	if err != nil {
		t.Fatal(err)
	}
	tagK, err := NewKey("tag", map[string]string{"name": "x"})
	if err != nil {
		t.Fatal(err)
	}

	u := GetOrCreate(reg, userK, func() *fakeUser { return &fakeUser{name: "x"} })
	tag := GetOrCreate(reg, tagK, func() *fakeUser { return &fakeUser{name: "x"} })
	if u == tag {
		t.Error("expected different kinds to register separately")
	}
}

func TestNewKey_MissingField(t *testing.T) {
	_, err := NewKey("venue", map[string]string{"url": ""})
	if err == nil {
		t.Fatal("expected error for empty identity field")
	}
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingFieldError, got %T", err)
	}
	if missing.Kind != "venue" || missing.Field != "url" {
		t.Errorf("unexpected error detail: %+v", missing)
	}
}

func TestNewKey_Deterministic(t *testing.T) {
	k1, err := NewKey("album", map[string]string{"artist": "Low", "name": "Things We Lost in the Fire"})
	if err != nil {
		t.Fatal(err)
	}
	k2, err := NewKey("album", map[string]string{"name": "Things We Lost in the Fire", "artist": "Low"})
	if err != nil {
		t.Fatal(err)
	}
	if k1 != k2 {
		t.Error("expected field order not to affect the key")
	}
}

func TestGetOrCreate_RecursiveBuild(t *testing.T) {
	reg := NewRegistry()

	// A builder that constructs a related entity through the same registry
	// must not deadlock.
	outer := GetOrCreate(reg, userKey(t, "outer"), func() *fakeUser {
		inner := GetOrCreate(reg, userKey(t, "inner"), func() *fakeUser {
			return &fakeUser{name: "inner"}
		})
		return &fakeUser{name: "outer", playcount: len(inner.name)}
	})
	if outer.name != "outer" {
		t.Errorf("unexpected instance: %+v", outer)
	}
	if reg.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", reg.Len())
	}
}
