package repository

import (
	"testing"

	"github.com/deppfellow/go-crud/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestContactWhere(t *testing.T) {
	where, args := contactWhere(model.ContactFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = contactWhere(model.ContactFilter{Term: " ada ", CreatedBy: "user_1"})
	assert.Equal(t, " WHERE (name ILIKE $1 OR email ILIKE $1) AND created_by = $2", where)
	assert.Equal(t, []any{"%ada%", "user_1"}, args)
}

func TestContactWhere_EscapesWildcards(t *testing.T) {
	_, args := contactWhere(model.ContactFilter{Term: "50%_off"})
	assert.Equal(t, []any{`%50\%\_off%`}, args)
}

func TestAutocompleteQuery(t *testing.T) {
	sql, args := autocompleteQuery("ad_", "")
	assert.Equal(t, "SELECT id, name, email FROM contacts WHERE (name ILIKE $1 OR email ILIKE $1) ORDER BY name LIMIT $2", sql)
	assert.Equal(t, []any{`ad\_%`, AutocompleteLimit}, args)

	sql, args = autocompleteQuery("ad", "user_1")
	assert.Equal(t, "SELECT id, name, email FROM contacts WHERE (name ILIKE $1 OR email ILIKE $1) AND created_by = $2 ORDER BY name LIMIT $3", sql)
	assert.Equal(t, []any{"ad%", "user_1", AutocompleteLimit}, args)
}

func TestContactOrderBy(t *testing.T) {
	tests := []struct {
		filter model.ContactFilter
		want   string
	}{
		{model.ContactFilter{}, "id ASC"},
		{model.ContactFilter{Desc: true}, "id DESC"},
		{model.ContactFilter{Sort: "name"}, "name ASC, id ASC"},
		{model.ContactFilter{Sort: "createdAt", Desc: true}, "created_at DESC, id ASC"},
		{model.ContactFilter{Sort: "1; DROP TABLE contacts"}, "id ASC"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, contactOrderBy(tt.filter))
	}
}
