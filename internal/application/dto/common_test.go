package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/trazabilidad-api/internal/application/dto"
)

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   dto.PageRequest
		want dto.PageRequest
	}{
		{"vacía", dto.PageRequest{}, dto.PageRequest{Limit: dto.DefaultPageLimit}},
		{"límite excesivo", dto.PageRequest{Limit: 10_000, Offset: 3}, dto.PageRequest{Limit: dto.DefaultPageLimit, Offset: 3}},
		{"offset negativo", dto.PageRequest{Limit: 5, Offset: -2}, dto.PageRequest{Limit: 5}},
		{"válida", dto.PageRequest{Limit: 20, Offset: 40}, dto.PageRequest{Limit: 20, Offset: 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Normalize()
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	first := dto.Paginate(items, dto.PageRequest{Limit: 2})
	assert.Equal(t, []string{"a", "b"}, first.Items)
	assert.True(t, first.Page.HasMore)

	last := dto.Paginate(items, dto.PageRequest{Limit: 2, Offset: 4})
	assert.Equal(t, []string{"e"}, last.Items)
	assert.False(t, last.Page.HasMore)
	assert.Equal(t, 4, last.Page.Offset)

	beyond := dto.Paginate(items, dto.PageRequest{Limit: 2, Offset: 9})
	assert.NotNil(t, beyond.Items)
	assert.Empty(t, beyond.Items)
	assert.False(t, beyond.Page.HasMore)

	exact := dto.Paginate(items, dto.PageRequest{Limit: 5})
	assert.Len(t, exact.Items, 5)
	assert.False(t, exact.Page.HasMore)
}
