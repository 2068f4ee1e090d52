package domain

import "slices"

// Meta holds an entity's extensible key/value attributes.
type Meta map[string]string

// HasMetaAttributes is implemented by entities backed by a meta relation.
type HasMetaAttributes interface {
	// MetaKeys is the allow-list of keys the entity persists.
	MetaKeys() []string
	MetaValue(key string) (string, bool)
}

// Account meta keys.
const (
	MetaUserpic  = "userpic"
	MetaSummary  = "user_summary"
	MetaContacts = "user_contacts"
)

var accountMetaKeys = []string{MetaUserpic, MetaSummary, MetaContacts}

// Collection meta keys.
const (
	MetaCollectionSummary = "collection_summary"
)

var collectionMetaKeys = []string{MetaCollectionSummary}

// MetaAllowed reports whether key is in the entity's allow-list.
func MetaAllowed(e HasMetaAttributes, key string) bool {
	return slices.Contains(e.MetaKeys(), key)
}

// Get returns the value for key, treating a nil map as empty.
func (m Meta) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m[key]
	return v, ok
}

// Clone returns an independent copy.
func (m Meta) Clone() Meta {
	if m == nil {
		return nil
	}
	out := make(Meta, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
