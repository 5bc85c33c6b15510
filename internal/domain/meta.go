package domain

import "strings"

// Meta is the metadata block MoySklad attaches to every entity and list.
type Meta struct {
	Href      string `json:"href"`
	Type      string `json:"type,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	Size      int    `json:"size,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// EntityID extracts the entity ID from the href. MoySklad hrefs end with
// the entity UUID, possibly followed by a query string.
func (m Meta) EntityID() string {
	href := m.Href
	if i := strings.IndexByte(href, '?'); i >= 0 {
		href = href[:i]
	}
	href = strings.TrimSuffix(href, "/")
	if i := strings.LastIndexByte(href, '/'); i >= 0 {
		return href[i+1:]
	}
	return href
}

// EntityRef is a reference to another entity. Expanded references also
// carry the ID and name.
type EntityRef struct {
	Meta Meta   `json:"meta"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// EntityID returns the referenced entity's ID, falling back to the href
// when the reference is not expanded.
func (r EntityRef) EntityID() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Meta.EntityID()
}

// MetaRef is the minimal reference shape accepted in write requests.
type MetaRef struct {
	Meta Meta `json:"meta"`
}

// Ref converts an entity reference into the write-request shape.
func (r EntityRef) Ref() MetaRef {
	return MetaRef{Meta: r.Meta}
}
