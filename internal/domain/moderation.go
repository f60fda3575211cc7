package domain

import "errors"

var (
	ErrModRecordExists   = errors.New("moderation record already exists")
	ErrModRecordNotFound = errors.New("moderation record not found")
	ErrNotOwner          = errors.New("caller is not the owner")
)

// ModRecord holds the owner and moderator set for one game id.
type ModRecord struct {
	Owner string          `json:"owner"`
	Mods  map[string]bool `json:"mods"`
}

// ModRegistry is the capability map from game id to its moderation record.
type ModRegistry struct {
	Records map[int64]*ModRecord `json:"records"`
}

// NewModRegistry returns an empty registry.
func NewModRegistry() *ModRegistry {
	return &ModRegistry{Records: make(map[int64]*ModRecord)}
}

// Create registers a moderation record with the given owner.
func (r *ModRegistry) Create(id int64, owner string) error {
	if _, ok := r.Records[id]; ok {
		return ErrModRecordExists
	}
	r.Records[id] = &ModRecord{Owner: owner, Mods: make(map[string]bool)}
	return nil
}

// IsOwner reports whether user owns the record. Unknown ids are simply false.
func (r *ModRegistry) IsOwner(id int64, user string) bool {
	rec, ok := r.Records[id]
	return ok && rec.Owner == user
}

// IsModOrOwner reports whether user is the owner or a moderator.
func (r *ModRegistry) IsModOrOwner(id int64, user string) bool {
	rec, ok := r.Records[id]
	if !ok {
		return false
	}
	return rec.Owner == user || rec.Mods[user]
}

func (r *ModRegistry) ownedRecord(id int64, caller string) (*ModRecord, error) {
	rec, ok := r.Records[id]
	if !ok {
		return nil, ErrModRecordNotFound
	}
	if rec.Owner != caller {
		return nil, ErrNotOwner
	}
	return rec, nil
}

// AddMod grants moderator rights. Only the current owner may call it.
func (r *ModRegistry) AddMod(id int64, mod, caller string) error {
	rec, err := r.ownedRecord(id, caller)
	if err != nil {
		return err
	}
	rec.Mods[mod] = true
	return nil
}

// RemoveMod revokes moderator rights. Only the current owner may call it.
func (r *ModRegistry) RemoveMod(id int64, mod, caller string) error {
	rec, err := r.ownedRecord(id, caller)
	if err != nil {
		return err
	}
	delete(rec.Mods, mod)
	return nil
}

// SetOwner reassigns ownership. Only the current owner may call it; the old
// owner keeps no privileges afterwards unless separately added as a mod.
func (r *ModRegistry) SetOwner(id int64, newOwner, caller string) error {
	rec, err := r.ownedRecord(id, caller)
	if err != nil {
		return err
	}
	rec.Owner = newOwner
	return nil
}
