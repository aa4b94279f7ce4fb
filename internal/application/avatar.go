package application

import (
	"net/url"
	"strings"
)

const DefaultAvatarBaseURL = "https://ui-avatars.com/api/"

// AvatarURL builds the generated avatar URL of a person; equal names give equal URLs.
func AvatarURL(base, firstName, lastName string) string {
	if base == "" {
		base = DefaultAvatarBaseURL
	}
	v := url.Values{}
	v.Set("name", strings.TrimSpace(firstName+" "+lastName))
	v.Set("size", "255")
	v.Set("background", "random")
	return base + "?" + v.Encode()
}
