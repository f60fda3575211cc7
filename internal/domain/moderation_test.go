package domain

import "testing"

func TestModerationOwnership(t *testing.T) {
	r := NewModRegistry()

	if err := r.Create(123, "u0"); err != nil {
		t.Fatalf("create error: %v", err)
	}
	if err := r.Create(456, "u1"); err != nil {
		t.Fatalf("create error: %v", err)
	}
	if err := r.Create(123, "u2"); err != ErrModRecordExists {
		t.Fatalf("duplicate create err = %v", err)
	}

	if !r.IsOwner(123, "u0") || !r.IsOwner(456, "u1") {
		t.Fatalf("creators should be owners")
	}
	if r.IsOwner(123, "u1") || r.IsOwner(456, "u0") {
		t.Fatalf("non-creators should not be owners")
	}
	if !r.IsModOrOwner(123, "u0") {
		t.Fatalf("owner should pass mod-or-owner")
	}
	if r.IsModOrOwner(123, "u1") {
		t.Fatalf("random user should not pass mod-or-owner")
	}
	if r.IsOwner(999, "u0") || r.IsModOrOwner(999, "u0") {
		t.Fatalf("unknown id predicates should be false")
	}
}

func TestOnlyOwnerManagesMods(t *testing.T) {
	r := NewModRegistry()
	if err := r.Create(123, "u0"); err != nil {
		t.Fatalf("create error: %v", err)
	}

	if err := r.AddMod(123, "u2", "u1"); err != ErrNotOwner {
		t.Fatalf("non-owner add mod err = %v", err)
	}
	if r.IsModOrOwner(123, "u2") {
		t.Fatalf("rejected mod must not be a mod")
	}

	if err := r.AddMod(123, "u2", "u0"); err != nil {
		t.Fatalf("add mod error: %v", err)
	}
	if err := r.AddMod(123, "u3", "u0"); err != nil {
		t.Fatalf("add mod error: %v", err)
	}
	if !r.IsModOrOwner(123, "u2") || !r.IsModOrOwner(123, "u3") {
		t.Fatalf("added mods should pass mod-or-owner")
	}
	if r.IsOwner(123, "u2") {
		t.Fatalf("mod must not be owner")
	}

	if err := r.RemoveMod(123, "u2", "u1"); err != ErrNotOwner {
		t.Fatalf("non-owner remove mod err = %v", err)
	}
	if !r.IsModOrOwner(123, "u2") {
		t.Fatalf("mod should survive rejected removal")
	}
	if err := r.RemoveMod(123, "u2", "u0"); err != nil {
		t.Fatalf("remove mod error: %v", err)
	}
	if r.IsModOrOwner(123, "u2") {
		t.Fatalf("removed mod should lose access")
	}

	if err := r.AddMod(999, "u2", "u0"); err != ErrModRecordNotFound {
		t.Fatalf("unknown id add mod err = %v", err)
	}
}

func TestOnlyOwnerSetsOwner(t *testing.T) {
	r := NewModRegistry()
	if err := r.Create(123, "u0"); err != nil {
		t.Fatalf("create error: %v", err)
	}

	if err := r.SetOwner(123, "u1", "u1"); err != ErrNotOwner {
		t.Fatalf("non-owner set owner err = %v", err)
	}
	if err := r.SetOwner(123, "u1", "u0"); err != nil {
		t.Fatalf("set owner error: %v", err)
	}

	if r.IsOwner(123, "u0") || r.IsModOrOwner(123, "u0") {
		t.Fatalf("old owner should lose all access")
	}
	if !r.IsOwner(123, "u1") || !r.IsModOrOwner(123, "u1") {
		t.Fatalf("new owner should gain access")
	}
}
