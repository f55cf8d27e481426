package rendezvous

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mpc-sdk/multi-factor-accounts/internal/mpc"
)

// AssociatedData is the opaque key/value mapping exchanged via the
// meeting point alongside public keys. It is immutable once published
// to the meeting.
type AssociatedData map[string]interface{}

// String returns the string value for key, or "" when absent.
func (d AssociatedData) String(key string) string {
	value, _ := d[key].(string)
	return value
}

// Uint returns the numeric value for key. JSON numbers decode as
// float64 so both are accepted.
func (d AssociatedData) Uint(key string) uint16 {
	switch value := d[key].(type) {
	case float64:
		return uint16(value)
	case int:
		return uint16(value)
	case uint16:
		return value
	}
	return 0
}

// MeetingInfo describes a registered meeting point. The first
// identifier is the initiator's own slot.
type MeetingInfo struct {
	MeetingID   string   `json:"meetingId"`
	Identifiers []string `json:"identifiers"`
}

const defaultPollInterval = time.Second

// Client talks to the relay server's meeting endpoints. It is safe for
// concurrent use.
type Client struct {
	httpClient   *http.Client
	server       mpc.ServerOptions
	keypair      mpc.Keypair
	pollInterval time.Duration
}

// NewClient creates a meeting client bound to a relay server and the
// caller's noise keypair.
func NewClient(server mpc.ServerOptions, keypair mpc.Keypair) *Client {
	return &Client{
		httpClient:   &http.Client{},
		server:       server,
		keypair:      keypair,
		pollInterval: defaultPollInterval,
	}
}

// WithPollInterval overrides the join polling interval.
func (c *Client) WithPollInterval(interval time.Duration) *Client {
	c.pollInterval = interval
	return c
}

// ConvertURLProtocol converts a ws: (or wss:) relay URL to its http:
// (or https:) equivalent and strips any trailing slash.
func ConvertURLProtocol(server string) (string, error) {
	parsed, err := url.Parse(server)
	if err != nil {
		return "", errors.Wrap(err, "invalid relay server url")
	}
	switch parsed.Scheme {
	case "ws":
		parsed.Scheme = "http"
	case "wss":
		parsed.Scheme = "https"
	}
	return strings.TrimRight(parsed.String(), "/"), nil
}

// FetchServerPublicKey retrieves the relay server's static public key.
func FetchServerPublicKey(ctx context.Context, serverURL string) (string, error) {
	base, err := ConvertURLProtocol(serverURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/public-key", nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to build public key request")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", errors.Wrap(ErrRelayUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("unexpected status code fetching public key: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read public key response")
	}
	return strings.TrimSpace(string(body)), nil
}

type createMeetingRequest struct {
	Identifiers []string       `json:"identifiers"`
	Initiator   string         `json:"initiator"`
	PublicKey   string         `json:"publicKey"`
	Data        AssociatedData `json:"data,omitempty"`
}

type createMeetingResponse struct {
	MeetingID string `json:"meetingId"`
}

type joinMeetingRequest struct {
	UserID    string `json:"userId"`
	PublicKey string `json:"publicKey"`
}

type meetingStatusResponse struct {
	Ready      bool           `json:"ready"`
	PublicKeys []string       `json:"publicKeys"`
	Data       AssociatedData `json:"data,omitempty"`
}

// CreateMeeting registers a meeting with the relay server, supplying
// the full ordered identifier list and associated data. Creation does
// not register the initiator's presence; the initiator must join its
// own slot afterwards like every other participant.
func (c *Client) CreateMeeting(ctx context.Context, identifiers []string, initiatorID string, data AssociatedData) (string, error) {
	payload := createMeetingRequest{
		Identifiers: identifiers,
		Initiator:   initiatorID,
		PublicKey:   c.keypair.PublicKey,
		Data:        data,
	}

	var response createMeetingResponse
	if err := c.post(ctx, "/meetings", &payload, &response); err != nil {
		return "", err
	}

	log.Debug().
		Str("meeting_id", response.MeetingID).
		Int("slots", len(identifiers)).
		Msg("meeting created")
	return response.MeetingID, nil
}

// JoinMeeting registers the caller's presence for userID and suspends
// until every identifier in the meeting has joined, then returns the
// full participant public key list (in original identifier order) and
// the associated data published at creation.
//
// There is no client-side timeout; cancellation is driven entirely by
// ctx. Meeting expiry is the relay server's responsibility and
// surfaces as ErrMeetingExpired.
func (c *Client) JoinMeeting(ctx context.Context, meetingID, userID string) ([]string, AssociatedData, error) {
	join := joinMeetingRequest{UserID: userID, PublicKey: c.keypair.PublicKey}
	if err := c.post(ctx, "/meetings/"+meetingID+"/join", &join, nil); err != nil {
		return nil, nil, err
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var status meetingStatusResponse
		err := c.get(ctx, "/meetings/"+meetingID+"/status?user="+url.QueryEscape(userID), &status)
		if err != nil {
			return nil, nil, err
		}
		if status.Ready {
			return status.PublicKeys, status.Data, nil
		}

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) post(ctx context.Context, path string, payload, response interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to encode relay request")
	}

	base, err := ConvertURLProtocol(c.server.ServerURL)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build relay request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, response)
}

func (c *Client) get(ctx context.Context, path string, response interface{}) error {
	base, err := ConvertURLProtocol(c.server.ServerURL)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build relay request")
	}
	return c.do(req, response)
}

func (c *Client) do(req *http.Request, response interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return req.Context().Err()
		}
		return errors.Wrap(ErrRelayUnavailable, err.Error())
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrMeetingNotFound
	case http.StatusGone:
		return ErrMeetingExpired
	default:
		reason, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &RelayRejectedError{Status: resp.StatusCode, Reason: strings.TrimSpace(string(reason))}
	}

	if response == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return errors.Wrap(err, "failed to decode relay response")
	}
	return nil
}
