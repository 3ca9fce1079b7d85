package types

// Key identifies one entity: a kind plus either an integer id assigned by
// the datastore or a caller-supplied string name.
type Key struct {
	Kind string
	ID   int64
	Name string
}

// IDOrName returns the string name if set, otherwise the integer id.
func (k Key) IDOrName() any {
	if k.Name != "" {
		return k.Name
	}
	return k.ID
}

// IsZero reports whether the key has neither an id nor a name.
func (k Key) IsZero() bool {
	return k.ID == 0 && k.Name == ""
}

// Entity is a kind-tagged, schemaless record. The key is zero until the
// entity has been put.
type Entity struct {
	Kind       string
	Key        Key
	Properties map[string]any
}

// NewEntity returns an empty entity of the given kind.
func NewEntity(kind string) *Entity {
	return &Entity{Kind: kind, Properties: make(map[string]any)}
}

// Get returns the named property, or nil if absent.
func (e *Entity) Get(column string) any {
	return e.Properties[column]
}

// Set stores a property value.
func (e *Entity) Set(column string, value any) {
	if e.Properties == nil {
		e.Properties = make(map[string]any)
	}
	e.Properties[column] = value
}

// Clone returns a copy of the entity with its own property map.
func (e *Entity) Clone() *Entity {
	c := &Entity{Kind: e.Kind, Key: e.Key, Properties: make(map[string]any, len(e.Properties))}
	for k, v := range e.Properties {
		c.Properties[k] = v
	}
	return c
}
