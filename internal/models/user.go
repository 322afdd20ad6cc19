package models

import "strings"

// User represents a directory entry resolvable from imported free-text
// references. IDs are unique but not necessarily contiguous.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Email string `json:"email"`
}

// UserInfo is the parsed form of a free-text user reference.
type UserInfo struct {
	Name  string
	Email string
}

// ParseUserInfo recognises three reference forms, tried in order:
// "Name <email>", a bare email, and a bare name. Empty input yields the
// zero value.
func ParseUserInfo(text string) UserInfo {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return UserInfo{}
	}

	if open := strings.Index(trimmed, "<"); open >= 0 {
		if close := strings.Index(trimmed[open:], ">"); close > 0 {
			name := strings.TrimSpace(trimmed[:open])
			email := strings.TrimSpace(trimmed[open+1 : open+close])
			if email != "" {
				return UserInfo{Name: name, Email: email}
			}
		}
	}

	if strings.Contains(trimmed, "@") {
		local := trimmed[:strings.Index(trimmed, "@")]
		return UserInfo{Name: local, Email: trimmed}
	}

	return UserInfo{Name: trimmed}
}

// Format renders the canonical display string for a user: "Name <email>"
// when an email is present, else the bare name.
func (u User) Format() string {
	if u.Email != "" && u.Name != "" {
		return u.Name + " <" + u.Email + ">"
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
