package rendezvous

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Invite prefixes for the two session types.
const (
	KeygenInvitePrefix = "keys/join"
	SignInvitePrefix   = "sign/join"
)

// Invite is the parsed form of an invitation link. The query
// parameters are used purely for early display before the
// authoritative join response arrives.
type Invite struct {
	Prefix    string
	MeetingID string
	UserID    string
	Params    url.Values
}

// InviteURL builds an invitation link for one rendezvous slot, e.g.
//
//	https://host/#/keys/join/<meetingId>/<userId>?name=...&parties=3&threshold=2
//
// Each link may only be used once.
func InviteURL(base, prefix, meetingID, userID string, params url.Values) string {
	link := fmt.Sprintf("%s/#/%s/%s/%s",
		strings.TrimRight(base, "/"), prefix, meetingID, userID)
	if len(params) > 0 {
		link += "?" + params.Encode()
	}
	return link
}

// ParseInviteURL decodes an invitation link produced by InviteURL.
func ParseInviteURL(raw string) (*Invite, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "invalid invitation link")
	}

	fragment := parsed.Fragment
	if fragment == "" {
		return nil, errors.New("invitation link has no fragment")
	}

	params := url.Values{}
	if idx := strings.IndexByte(fragment, '?'); idx >= 0 {
		params, err = url.ParseQuery(fragment[idx+1:])
		if err != nil {
			return nil, errors.Wrap(err, "invalid invitation parameters")
		}
		fragment = fragment[:idx]
	}

	parts := strings.Split(strings.Trim(fragment, "/"), "/")
	if len(parts) < 3 {
		return nil, errors.New("invitation link is missing meeting or user identifier")
	}

	// The prefix may itself contain slashes (keys/join).
	meetingID := parts[len(parts)-2]
	userID := parts[len(parts)-1]
	prefix := strings.Join(parts[:len(parts)-2], "/")

	return &Invite{
		Prefix:    prefix,
		MeetingID: meetingID,
		UserID:    userID,
		Params:    params,
	}, nil
}
