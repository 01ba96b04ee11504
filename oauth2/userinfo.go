package oauth2

import (
	"encoding/json"
	"maps"
	"math"
	"strconv"
	"strings"
)

// UserInfo exposes the normalized profile returned by a supplier.
type UserInfo interface {
	ID() string
	Username() string
	EmailAddress() string
	UserImageURL() string
	Attributes() map[string]any
}

// NewUserInfo maps attrs to the UserInfo of supplier.
func NewUserInfo(supplier Supplier, attrs map[string]any) (UserInfo, error) {
	base := attributes(maps.Clone(attrs))
	if base == nil {
		base = attributes{}
	}

	switch supplier {
	case SupplierGoogle:
		return googleUserInfo{base}, nil
	case SupplierFacebook:
		return facebookUserInfo{base}, nil
	case SupplierGitHub:
		return githubUserInfo{base}, nil
	case SupplierLinkedIn:
		return linkedInUserInfo{base}, nil
	default:
		return nil, supplierNotImplemented(string(supplier))
	}
}

type attributes map[string]any

func (a attributes) Attributes() map[string]any {
	return a
}

func (a attributes) str(key string) string {
	return stringValue(a[key])
}

type googleUserInfo struct{ attributes }

func (g googleUserInfo) ID() string           { return g.str("sub") }
func (g googleUserInfo) Username() string     { return g.str("name") }
func (g googleUserInfo) EmailAddress() string { return g.str("email") }
func (g googleUserInfo) UserImageURL() string { return g.str("picture") }

type facebookUserInfo struct{ attributes }

func (f facebookUserInfo) ID() string           { return f.str("id") }
func (f facebookUserInfo) Username() string     { return f.str("name") }
func (f facebookUserInfo) EmailAddress() string { return f.str("email") }

// UserImageURL reads picture.data.url, returning "" when any level has an
// unexpected shape.
func (f facebookUserInfo) UserImageURL() string {
	picture, ok := f.attributes["picture"].(map[string]any)
	if !ok {
		return ""
	}
	data, ok := picture["data"].(map[string]any)
	if !ok {
		return ""
	}
	url, _ := data["url"].(string)
	return url
}

type githubUserInfo struct{ attributes }

func (g githubUserInfo) ID() string           { return g.str("id") }
func (g githubUserInfo) Username() string     { return g.str("name") }
func (g githubUserInfo) EmailAddress() string { return g.str("email") }
func (g githubUserInfo) UserImageURL() string { return g.str("avatar_url") }

type linkedInUserInfo struct{ attributes }

func (l linkedInUserInfo) ID() string { return l.str("id") }

func (l linkedInUserInfo) Username() string {
	return strings.TrimSpace(l.str("localizedFirstName") + " " + l.str("localizedLastName"))
}

func (l linkedInUserInfo) EmailAddress() string { return l.str("emailAddress") }
func (l linkedInUserInfo) UserImageURL() string { return l.str("pictureUrl") }

// stringValue renders identifiers that suppliers send as numbers (GitHub)
// as decimal strings.
func stringValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case json.Number:
		return typed.String()
	case float64:
		if typed == math.Trunc(typed) && math.Abs(typed) < 1<<53 {
			return strconv.FormatInt(int64(typed), 10)
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	default:
		return ""
	}
}
