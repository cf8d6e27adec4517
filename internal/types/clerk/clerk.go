package clerk

import "encoding/json"

type ClerkWebhookEvent struct {
	Data   json.RawMessage `json:"data"`
	Object string          `json:"object"`
	Type   string          `json:"type"`
}

type ClerkUserData struct {
	ID             string       `json:"id"`
	FirstName      string       `json:"first_name"`
	LastName       string       `json:"last_name"`
	Username       string       `json:"username"`
	UnsafeMetadata UserMetadata `json:"unsafe_metadata"`
	PublicMetadata UserMetadata `json:"public_metadata"`
}

// UserMetadata is the subset of Clerk metadata the app writes at sign-up.
type UserMetadata struct {
	Timezone string `json:"timezone"`
}

type DeletedObject struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
