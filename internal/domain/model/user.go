package model

import (
	"time"
)

// User is the stored profile of a local account. Friends holds LeetCode
// usernames, not user ids.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email,omitempty"`
	DisplayName      string     `json:"displayName,omitempty"`
	LeetcodeUsername string     `json:"leetcodeUsername,omitempty"`
	Friends          []string   `json:"friends"`
	HashedPassword   string     `json:"-"` // Not exposed
	CreatedAt        *time.Time `json:"createdAt,omitempty"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
}

// FriendRecord is what a friend list entry renders as. A friend with no
// local account is represented by LeetcodeUsername alone.
type FriendRecord struct {
	ID               string `json:"id,omitempty"`
	LeetcodeUsername string `json:"leetcodeUsername"`
	DisplayName      string `json:"displayName,omitempty"`
}

func (u *User) FriendRecord() FriendRecord {
	return FriendRecord{
		ID:               u.ID,
		LeetcodeUsername: u.LeetcodeUsername,
		DisplayName:      u.DisplayName,
	}
}

func PlaceholderFriend(leetcodeUsername string) FriendRecord {
	return FriendRecord{LeetcodeUsername: leetcodeUsername}
}
