package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveFlags(t *testing.T) {
	tests := []struct {
		role Role
		want Flags
	}{
		{Admin, Flags{IsStaff: true, IsSuperuser: true}},
		{Author, Flags{IsStaff: true, IsSuperuser: false}},
		{Reader, Flags{IsStaff: false, IsSuperuser: false}},
		{Role("editor"), Flags{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveFlags(tt.role))
		})
	}
}

func TestDeriveFlags_MatchesRoleInvariant(t *testing.T) {
	for _, role := range All {
		flags := DeriveFlags(role)
		assert.Equal(t, role != Reader, flags.IsStaff, role)
		assert.Equal(t, role == Admin, flags.IsSuperuser, role)
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, Admin.Valid())
	assert.True(t, Author.Valid())
	assert.True(t, Reader.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("Admin").Valid())
}

func TestRole_Privileged(t *testing.T) {
	assert.True(t, Admin.Privileged())
	assert.True(t, Author.Privileged())
	assert.False(t, Reader.Privileged())
	assert.False(t, Role("").Privileged())
}

func TestRole_GroupName(t *testing.T) {
	assert.Equal(t, "Admin", Admin.GroupName())
	assert.Equal(t, "Author", Author.GroupName())
	assert.Equal(t, "Reader", Reader.GroupName())
	assert.Equal(t, "", Role("nobody").GroupName())
}
