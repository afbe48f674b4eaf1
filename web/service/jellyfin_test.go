package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDeviceIDIsStable(t *testing.T) {
	a := DeriveDeviceID("bob")
	b := DeriveDeviceID("bob")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, DeriveDeviceID("alice"))
}

func TestAvatarURL(t *testing.T) {
	jellyfinService := JellyfinService{}

	account := &JellyfinAccount{Id: "abc"}
	assert.Equal(t, "/os_logo_square.png", jellyfinService.AvatarURL("http://media.local", account))

	account.PrimaryImageTag = "tag123"
	assert.Equal(t,
		"http://media.local/Users/abc/Images/Primary/?tag=tag123&quality=90",
		jellyfinService.AvatarURL("http://media.local", account))
}
