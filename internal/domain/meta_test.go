package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaEntityID(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{
			name: "plain entity href",
			href: "https://api.moysklad.ru/api/remap/1.2/entity/product/aaa-bbb-ccc",
			want: "aaa-bbb-ccc",
		},
		{
			name: "href with query string",
			href: "https://api.moysklad.ru/api/remap/1.2/entity/product/aaa-bbb-ccc?expand=attributes",
			want: "aaa-bbb-ccc",
		},
		{
			name: "trailing slash",
			href: "https://api.moysklad.ru/api/remap/1.2/entity/store/ddd-eee/",
			want: "ddd-eee",
		},
		{
			name: "empty href",
			href: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Meta{Href: tt.href}
			assert.Equal(t, tt.want, m.EntityID())
		})
	}
}

func TestEntityRefEntityID(t *testing.T) {
	t.Run("prefers explicit ID", func(t *testing.T) {
		ref := EntityRef{
			Meta: Meta{Href: "https://example.test/entity/store/from-href"},
			ID:   "explicit-id",
		}
		assert.Equal(t, "explicit-id", ref.EntityID())
	})

	t.Run("falls back to href", func(t *testing.T) {
		ref := EntityRef{Meta: Meta{Href: "https://example.test/entity/store/from-href"}}
		assert.Equal(t, "from-href", ref.EntityID())
	})
}
