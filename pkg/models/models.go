package models

// UserRecord is everything collected about one VK user. Posts hold non-empty
// texts in the order the wall served them; Groups hold community names.
type UserRecord struct {
	ID         int64    `json:"id"`
	ScreenName string   `json:"screen_name"`
	Posts      []string `json:"posts"`
	Groups     []string `json:"groups"`
}

// HasText reports whether the user contributed any post text
func (u UserRecord) HasText() bool {
	return len(u.Posts) > 0
}
