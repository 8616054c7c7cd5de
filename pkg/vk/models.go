package vk

import (
	"encoding/json"
	"strings"

	errs "vkprofiler/pkg/errors"
)

// Envelope is the top-level shape of every VK method response
type Envelope struct {
	Response json.RawMessage `json:"response"`
	Error    *errs.APIError  `json:"error"`
}

// User is an entry of the users.get response
type User struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	ScreenName  string `json:"screen_name"`
	Deactivated string `json:"deactivated"`
}

// WallPage is one page of wall.get
type WallPage struct {
	Count int        `json:"count"`
	Items []WallPost `json:"items"`
}

// WallPost is a wall entry. Reposts keep the original in CopyHistory.
type WallPost struct {
	ID          int64        `json:"id"`
	OwnerID     int64        `json:"owner_id"`
	Text        string       `json:"text"`
	CopyHistory []WallPost   `json:"copy_history"`
	Attachments []Attachment `json:"attachments"`
}

// Body returns the trimmed post text. A post without own text falls back to
// the non-empty texts of its repost chain, joined by a single space.
func (p WallPost) Body() string {
	if text := strings.TrimSpace(p.Text); text != "" {
		return text
	}

	var parts []string
	for _, copied := range p.CopyHistory {
		if text := strings.TrimSpace(copied.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// PhotoURL returns the URL of the last listed size of the first attachment
// when that attachment is a photo, and "" otherwise.
func (p WallPost) PhotoURL() string {
	if len(p.Attachments) == 0 {
		return ""
	}
	first := p.Attachments[0]
	if first.Type != "photo" || first.Photo == nil || len(first.Photo.Sizes) == 0 {
		return ""
	}
	return first.Photo.Sizes[len(first.Photo.Sizes)-1].URL
}

// Attachment is a typed media item attached to a post
type Attachment struct {
	Type  string `json:"type"`
	Photo *Photo `json:"photo,omitempty"`
}

// Photo lists the available renditions of an attached photo
type Photo struct {
	ID    int64       `json:"id"`
	Sizes []PhotoSize `json:"sizes"`
}

// PhotoSize is a single rendition of a photo
type PhotoSize struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Subscriptions is the users.getSubscriptions response (non-extended form)
type Subscriptions struct {
	Users  IDList `json:"users"`
	Groups IDList `json:"groups"`
}

// IDList is a counted list of numeric ids
type IDList struct {
	Count int     `json:"count"`
	Items []int64 `json:"items"`
}

// Group is a community as returned by groups.getById
type Group struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	ScreenName string `json:"screen_name"`
	Type       string `json:"type"`
}

// GroupsByID is the groups.getById response
type GroupsByID struct {
	Groups []Group `json:"groups"`
}

// Decode unmarshals a method response into v. An absent or null response
// leaves v untouched.
func Decode(raw json.RawMessage, v interface{}) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}
