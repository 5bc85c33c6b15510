package domain

// List is the paginated collection envelope returned by list endpoints.
type List[T any] struct {
	Meta Meta `json:"meta"`
	Rows []T  `json:"rows"`
}

// First returns the first row, or nil when the list is empty.
func (l List[T]) First() *T {
	if len(l.Rows) == 0 {
		return nil
	}
	return &l.Rows[0]
}
