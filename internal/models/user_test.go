package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserInfo(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want UserInfo
	}{
		{"name with email", "Jane Doe <jane@example.com>", UserInfo{Name: "Jane Doe", Email: "jane@example.com"}},
		{"bare email", "jane.doe@example.com", UserInfo{Name: "jane.doe", Email: "jane.doe@example.com"}},
		{"bare name", "Jane Doe", UserInfo{Name: "Jane Doe"}},
		{"empty", "", UserInfo{}},
		{"whitespace only", "   ", UserInfo{}},
		{"padded composite", "  Jane Doe  < jane@example.com > ", UserInfo{Name: "Jane Doe", Email: "jane@example.com"}},
		{"empty brackets fall through to name", "Jane <>", UserInfo{Name: "Jane <>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseUserInfo(tt.in))
		})
	}
}

func TestUserFormatRoundTrip(t *testing.T) {
	u := User{ID: 7, Name: "Jane Doe", Email: "jane@example.com"}
	info := ParseUserInfo(u.Format())
	assert.Equal(t, u.Name, info.Name)
	assert.Equal(t, u.Email, info.Email)
}

func TestUserFormatFallbacks(t *testing.T) {
	assert.Equal(t, "Jane", User{Name: "Jane"}.Format())
	assert.Equal(t, "jane@example.com", User{Email: "jane@example.com"}.Format())
}
