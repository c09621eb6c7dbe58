package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/pkg/errors"
)

const svixTolerance = 5 * time.Minute

// ClerkWebhook verifies Svix-signed Clerk events and applies them to local users
type ClerkWebhook struct {
	secret []byte
	users  *UserService
	now    func() time.Time
}

// NewClerkWebhook takes the signing secret as shown by Clerk ("whsec_" + base64)
func NewClerkWebhook(secret string, users *UserService) (*ClerkWebhook, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		return nil, errors.Wrap(err, "decode clerk webhook secret")
	}
	return &ClerkWebhook{secret: raw, users: users, now: time.Now}, nil
}

func (w *ClerkWebhook) sign(id, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, w.secret)
	mac.Write([]byte(id + "." + timestamp + "."))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks the svix-id, svix-timestamp and svix-signature headers
func (w *ClerkWebhook) Verify(header http.Header, body []byte) error {
	id := header.Get("svix-id")
	timestamp := header.Get("svix-timestamp")
	signatures := header.Get("svix-signature")
	if id == "" || timestamp == "" || signatures == "" {
		return utils.BadRequestError("Missing webhook signature headers", nil)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return utils.BadRequestError("Invalid webhook timestamp", err)
	}
	sent := time.Unix(ts, 0)
	if d := w.now().Sub(sent); d > svixTolerance || d < -svixTolerance {
		return utils.BadRequestError("Webhook timestamp outside tolerance", nil)
	}

	expected := w.sign(id, timestamp, body)
	for _, candidate := range strings.Fields(signatures) {
		version, sig, ok := strings.Cut(candidate, ",")
		if !ok || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return utils.BadRequestError("Invalid webhook signature", nil)
}

type clerkEvent struct {
	Type string    `json:"type"`
	Data clerkUser `json:"data"`
}

type clerkUser struct {
	ID                    string `json:"id"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	ImageURL              string `json:"image_url"`
	PrimaryEmailAddressID string `json:"primary_email_address_id"`
	EmailAddresses        []struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	PublicMetadata struct {
		Role string `json:"role"`
	} `json:"public_metadata"`
}

func (u clerkUser) primaryEmail() string {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

// Handle verifies and applies one webhook delivery, returning the event type
func (w *ClerkWebhook) Handle(ctx context.Context, header http.Header, body []byte) (string, error) {
	if err := w.Verify(header, body); err != nil {
		return "", err
	}

	var event clerkEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return "", utils.BadRequestError("Invalid webhook payload", err)
	}
	if event.Data.ID == "" {
		return event.Type, utils.InvalidInput("Webhook payload has no user id")
	}

	switch event.Type {
	case "user.created", "user.updated":
		_, err := w.users.Sync(ctx, Identity{
			ClerkID:   event.Data.ID,
			Email:     event.Data.primaryEmail(),
			FirstName: event.Data.FirstName,
			LastName:  event.Data.LastName,
			ImageURL:  event.Data.ImageURL,
			Role:      event.Data.PublicMetadata.Role,
		})
		return event.Type, err
	case "user.deleted":
		return event.Type, w.users.DeleteByClerkID(ctx, event.Data.ID)
	default:
		utils.LogDebug("Ignoring clerk event %s", event.Type)
		return event.Type, nil
	}
}
