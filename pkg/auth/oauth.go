package auth

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"vkprofiler/pkg/vk"
)

const (
	authorizeURL = "https://oauth.vk.com/authorize"
	redirectURL  = "https://oauth.vk.com/blank.html"
	// wall and groups for collection, offline for a non-expiring token
	defaultScope = "wall,groups,offline"
)

// AuthorizeURL builds the implicit-flow URL that hands out a user token for
// the standalone application clientID.
func AuthorizeURL(clientID string) string {
	params := url.Values{}
	params.Set("client_id", clientID)
	params.Set("display", "page")
	params.Set("redirect_uri", redirectURL)
	params.Set("scope", defaultScope)
	params.Set("response_type", "token")
	params.Set("v", vk.APIVersion)
	return authorizeURL + "?" + params.Encode()
}

// ParseToken accepts either a bare access token or the blank.html redirect
// URL VK lands on after authorization, whose fragment carries access_token
// and user_id.
func ParseToken(input string) (*Token, error) {
	input = strings.TrimSpace(input)
	if !strings.Contains(input, "access_token=") {
		if err := ValidateAccessToken(input); err != nil {
			return nil, err
		}
		return &Token{AccessToken: input}, nil
	}

	raw := input
	if i := strings.Index(raw, "#"); i >= 0 {
		raw = raw[i+1:]
	} else if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[i+1:]
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if values.Get("error") != "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, values.Get("error_description"))
	}

	token := &Token{AccessToken: values.Get("access_token")}
	if err := ValidateAccessToken(token.AccessToken); err != nil {
		return nil, err
	}
	if id := values.Get("user_id"); id != "" {
		token.UserID, err = strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad user_id %q", ErrInvalidToken, id)
		}
	}
	return token, nil
}

// ShowTokenGuide prints how to obtain a token for clientID
func ShowTokenGuide(w io.Writer, clientID string) {
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "VK ACCESS TOKEN")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "vkprofiler reads walls and subscriptions through the VK API and needs")
	fmt.Fprintln(w, "an access token with the wall and groups scopes.")
	fmt.Fprintln(w)
	if clientID == "" {
		fmt.Fprintln(w, "1. Create a standalone application at https://dev.vk.com and note its ID.")
		fmt.Fprintln(w, "2. Run 'vkprofiler auth login --client-id <ID>' to get the authorization link.")
	} else {
		fmt.Fprintln(w, "1. Open this link while logged in to VK and allow access:")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "   "+AuthorizeURL(clientID))
		fmt.Fprintln(w)
		fmt.Fprintln(w, "2. VK redirects to a blank page. Copy the whole address from the")
		fmt.Fprintln(w, "   browser bar; it contains #access_token=...")
	}
	fmt.Fprintln(w, "3. Paste the address or the bare token when prompted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "A service token from the application settings also works for public")
	fmt.Fprintln(w, "profiles. Tokens are stored in the system keyring when available and in")
	fmt.Fprintln(w, "an encrypted file otherwise.")
	fmt.Fprintln(w, strings.Repeat("=", 72))
}
