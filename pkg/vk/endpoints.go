package vk

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// BaseURL is the root of the VK method API
	BaseURL = "https://api.vk.com/method"

	// APIVersion is the VK API version requested by default
	APIVersion = "5.199"

	MethodUsersGet              = "users.get"
	MethodWallGet               = "wall.get"
	MethodUsersGetSubscriptions = "users.getSubscriptions"
	MethodGroupsGetByID         = "groups.getById"

	// MaxWallCount is the largest page wall.get serves
	MaxWallCount = 100

	// MaxSubscriptionsCount is the largest page users.getSubscriptions serves
	MaxSubscriptionsCount = 200

	// MaxGroupIDs is the largest id list groups.getById accepts
	MaxGroupIDs = 500
)

// MethodURL builds the request URL for a method call. params must already
// carry the access token and version.
func MethodURL(baseURL, method string, params url.Values) string {
	return fmt.Sprintf("%s/%s?%s", strings.TrimRight(baseURL, "/"), method, params.Encode())
}

// UsersGetParams resolves screen names (or "id123" aliases) to users
func UsersGetParams(screenNames ...string) url.Values {
	params := url.Values{}
	params.Set("user_ids", strings.Join(screenNames, ","))
	return params
}

// WallGetParams requests one page of a wall by numeric owner id
func WallGetParams(ownerID int64, count, offset int) url.Values {
	params := url.Values{}
	params.Set("owner_id", strconv.FormatInt(ownerID, 10))
	params.Set("count", strconv.Itoa(clamp(count, MaxWallCount)))
	params.Set("offset", strconv.Itoa(offset))
	return params
}

// WallGetByDomainParams requests the first page of a wall by screen name
func WallGetByDomainParams(domain string) url.Values {
	params := url.Values{}
	params.Set("domain", domain)
	return params
}

// SubscriptionsParams requests one page of a user's subscriptions
func SubscriptionsParams(userID int64, count, offset int) url.Values {
	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(userID, 10))
	params.Set("count", strconv.Itoa(clamp(count, MaxSubscriptionsCount)))
	params.Set("offset", strconv.Itoa(offset))
	return params
}

// GroupsByIDParams requests names and types of the given communities
func GroupsByIDParams(ids []int64) url.Values {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}

	params := url.Values{}
	params.Set("group_ids", strings.Join(parts, ","))
	params.Set("fields", "name,type")
	return params
}

func clamp(n, max int) int {
	if n <= 0 || n > max {
		return max
	}
	return n
}

// SanitizeScreenName strips the decorations people paste along with a
// screen name: a leading @, a vk.com URL prefix and trailing slashes.
func SanitizeScreenName(name string) string {
	name = strings.TrimSpace(name)
	for _, prefix := range []string{"https://", "http://", "m.vk.com/", "vk.com/", "@"} {
		name = strings.TrimPrefix(name, prefix)
	}
	return strings.TrimRight(name, "/ ")
}

// IsValidScreenName checks a screen name against the characters VK allows
func IsValidScreenName(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}

	for _, char := range name {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '_') {
			return false
		}
	}

	return true
}
