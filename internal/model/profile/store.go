package profile

// Store exposes profile lookup for the session registry and HTTP handlers.
type Store interface {
	List() []Profile
	FindByID(id string) (Profile, bool)
	Default() Profile
}

// MemoryStore implements Store over an in-memory slice.
type MemoryStore struct {
	items     []Profile
	defaultID string
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied profiles.
// defaultID falls back to the first profile when it is empty or unknown.
func NewMemoryStore(items []Profile, defaultID string) *MemoryStore {
	s := &MemoryStore{items: clone(items)}
	if _, ok := s.FindByID(defaultID); ok {
		s.defaultID = defaultID
	} else if len(s.items) > 0 {
		s.defaultID = s.items[0].ID
	}
	return s
}

// List returns every profile.
func (s *MemoryStore) List() []Profile {
	return clone(s.items)
}

// FindByID looks up a profile by identifier.
func (s *MemoryStore) FindByID(id string) (Profile, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return cloneOne(item), true
		}
	}
	return Profile{}, false
}

// Default returns the profile used when none is requested.
func (s *MemoryStore) Default() Profile {
	p, _ := s.FindByID(s.defaultID)
	return p
}

func clone(items []Profile) []Profile {
	out := make([]Profile, len(items))
	for i, item := range items {
		out[i] = cloneOne(item)
	}
	return out
}

func cloneOne(p Profile) Profile {
	p.Replies = append([]string(nil), p.Replies...)
	return p
}
