package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.False(t, (&User{}).IsAdmin())
}

func TestCanSpendPoints(t *testing.T) {
	u := &User{RewardPoints: 50}

	assert.True(t, u.CanSpendPoints(0))
	assert.True(t, u.CanSpendPoints(50))
	assert.False(t, u.CanSpendPoints(51))
	assert.False(t, u.CanSpendPoints(-1))
}

func TestDefaultAddress(t *testing.T) {
	u := &User{}
	assert.Nil(t, u.DefaultAddress())

	u.Addresses = []Address{
		{Type: "work", City: "Austin"},
		{Type: "home", City: "Denver", IsDefault: true},
	}
	addr := u.DefaultAddress()
	assert.NotNil(t, addr)
	assert.Equal(t, "Denver", addr.City)
}
