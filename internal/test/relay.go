// Package test provides in-process fakes for exercising the meeting
// flow without a real relay server.
package test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mpc-sdk/multi-factor-accounts/internal/rendezvous"
)

// FakeRelay is an in-process relay server implementing the meeting
// endpoints. It keeps meetings in memory and never expires them on its
// own; use ExpireMeeting to simulate relay-side expiry.
type FakeRelay struct {
	t         *testing.T
	PublicKey string

	srv *httptest.Server

	mu                sync.Mutex
	nextID            int
	publicKeyRequests int
	meetings          map[string]*fakeMeeting
}

type fakeMeeting struct {
	identifiers []string
	data        rendezvous.AssociatedData
	joined      map[string]string
	expired     bool
}

// NewFakeRelay starts a relay server backed by httptest. The server is
// shut down via t.Cleanup.
func NewFakeRelay(t *testing.T) *FakeRelay {
	t.Helper()

	r := &FakeRelay{
		t:         t,
		PublicKey: "fake-relay-public-key",
		meetings:  map[string]*fakeMeeting{},
	}

	e := echo.New()
	e.HideBanner = true
	e.GET("/public-key", r.getPublicKey)
	e.POST("/meetings", r.createMeeting)
	e.POST("/meetings/:id/join", r.joinMeeting)
	e.GET("/meetings/:id/status", r.meetingStatus)

	r.srv = httptest.NewServer(e)
	t.Cleanup(r.srv.Close)

	return r
}

// URL returns the relay's http base URL.
func (r *FakeRelay) URL() string {
	return r.srv.URL
}

// ExpireMeeting marks a meeting expired so further requests against it
// answer 410 Gone.
func (r *FakeRelay) ExpireMeeting(meetingID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.meetings[meetingID]; ok {
		m.expired = true
	}
}

// MeetingCount reports how many meetings were registered.
func (r *FakeRelay) MeetingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.meetings)
}

// PublicKeyRequests reports how often the public key was fetched.
func (r *FakeRelay) PublicKeyRequests() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.publicKeyRequests
}

func (r *FakeRelay) getPublicKey(c echo.Context) error {
	r.mu.Lock()
	r.publicKeyRequests++
	r.mu.Unlock()
	return c.String(http.StatusOK, r.PublicKey+"\n")
}

type createMeetingBody struct {
	Identifiers []string                  `json:"identifiers"`
	Initiator   string                    `json:"initiator"`
	PublicKey   string                    `json:"publicKey"`
	Data        rendezvous.AssociatedData `json:"data"`
}

func (r *FakeRelay) createMeeting(c echo.Context) error {
	var body createMeetingBody
	if err := c.Bind(&body); err != nil {
		return c.String(http.StatusBadRequest, "malformed body")
	}
	if len(body.Identifiers) < 2 {
		return c.String(http.StatusBadRequest, "at least two identifiers required")
	}
	seen := map[string]bool{}
	for _, id := range body.Identifiers {
		if seen[id] {
			return c.String(http.StatusBadRequest, "duplicate identifier")
		}
		seen[id] = true
	}
	if !seen[body.Initiator] {
		return c.String(http.StatusBadRequest, "initiator not in identifier list")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	meetingID := "meeting-" + strconv.Itoa(r.nextID)
	r.meetings[meetingID] = &fakeMeeting{
		identifiers: append([]string(nil), body.Identifiers...),
		data:        body.Data,
		joined:      map[string]string{},
	}

	return c.JSON(http.StatusOK, map[string]string{"meetingId": meetingID})
}

type joinMeetingBody struct {
	UserID    string `json:"userId"`
	PublicKey string `json:"publicKey"`
}

func (r *FakeRelay) joinMeeting(c echo.Context) error {
	var body joinMeetingBody
	if err := c.Bind(&body); err != nil {
		return c.String(http.StatusBadRequest, "malformed body")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.meetings[c.Param("id")]
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	if m.expired {
		return c.NoContent(http.StatusGone)
	}
	if !contains(m.identifiers, body.UserID) {
		return c.NoContent(http.StatusNotFound)
	}

	m.joined[body.UserID] = body.PublicKey
	return c.NoContent(http.StatusOK)
}

func (r *FakeRelay) meetingStatus(c echo.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.meetings[c.Param("id")]
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	if m.expired {
		return c.NoContent(http.StatusGone)
	}

	if len(m.joined) < len(m.identifiers) {
		return c.JSON(http.StatusOK, map[string]interface{}{"ready": false})
	}

	keys := make([]string, 0, len(m.identifiers))
	for _, id := range m.identifiers {
		keys = append(keys, m.joined[id])
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ready":      true,
		"publicKeys": keys,
		"data":       m.data,
	})
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
