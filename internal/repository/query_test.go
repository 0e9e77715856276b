package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListQuery_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   ListQuery
		want ListQuery
	}{
		{"defaults", ListQuery{}, ListQuery{Page: 1, PageSize: DefaultPageSize}},
		{"clamped", ListQuery{Page: -3, PageSize: 1000}, ListQuery{Page: 1, PageSize: MaxPageSize}},
		{"page capped", ListQuery{Page: math.MaxInt, PageSize: MaxPageSize}, ListQuery{Page: MaxPage, PageSize: MaxPageSize}},
		{"trims search", ListQuery{Page: 2, PageSize: 5, Search: "  hi "}, ListQuery{Page: 2, PageSize: 5, Search: "hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}

	assert.Equal(t, 10, ListQuery{Page: 3, PageSize: 5}.Offset())
	assert.Equal(t, (MaxPage-1)*MaxPageSize, ListQuery{Page: math.MaxInt, PageSize: math.MaxInt}.Offset())
}

func TestOrderClauses(t *testing.T) {
	spec := orderSpec{
		table:   "posts",
		allowed: map[string]string{"created_at": "posts.created_at", "text": "posts.text"},
		def:     "-created_at",
	}

	assert.Equal(t, []string{"posts.text ASC", "posts.created_at DESC"}, orderClauses(spec, "text, -created_at"))
	assert.Equal(t, []string{"posts.text DESC"}, orderClauses(spec, "-text,text,password"))
	assert.Empty(t, orderClauses(spec, "password"))
	assert.Empty(t, orderClauses(spec, ""))
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, `%abc%`, containsPattern("ABC"))
	assert.Equal(t, `%50\%\_off\\%`, containsPattern(`50%_off\`))
}
