package webhook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/prperemyshlev/identity-sync-service/internal/utils"
)

// Provider event types
const (
	TypeUserCreated = "user.created"
	TypeUserUpdated = "user.updated"
	TypeUserDeleted = "user.deleted"
)

// ErrInvalidEvent is returned when an authenticated payload fails validation
var ErrInvalidEvent = errors.New("invalid webhook event")

// Event is one of UserCreated, UserUpdated, UserDeleted or Unknown
type Event interface {
	Type() string
	isEvent()
}

type UserCreated struct {
	OAuthID  string
	Email    string
	Username *string
}

type UserUpdated struct {
	OAuthID  string
	Username *string
}

type UserDeleted struct {
	OAuthID string
}

// Unknown carries event types this service does not act on
type Unknown struct {
	EventType string
	Data      any
}

func (UserCreated) Type() string { return TypeUserCreated }
func (UserUpdated) Type() string { return TypeUserUpdated }
func (UserDeleted) Type() string { return TypeUserDeleted }
func (e Unknown) Type() string   { return e.EventType }

func (UserCreated) isEvent() {}
func (UserUpdated) isEvent() {}
func (UserDeleted) isEvent() {}
func (Unknown) isEvent()     {}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type emailAddress struct {
	EmailAddress string `json:"email_address"`
}

type userCreatedData struct {
	ID             string         `json:"id" validate:"required"`
	EmailAddresses []emailAddress `json:"email_addresses" validate:"required,min=1"`
	Username       *string        `json:"username"`
}

type userUpdatedData struct {
	ID       string  `json:"id" validate:"required"`
	Username *string `json:"username"`
}

type userDeletedData struct {
	ID string `json:"id" validate:"required"`
}

var eventValidator = utils.NewValidator()

// ParseEvent decodes a payload, tolerating string and double-encoded bodies,
// and validates the fields the event type needs
func ParseEvent(raw any) (Event, error) {
	var env envelope
	if err := eventValidator.Bind(utils.DecodePayload(raw), &env, false); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	switch env.Type {
	case TypeUserCreated:
		var data userCreatedData
		if err := bindData(env.Data, &data); err != nil {
			return nil, err
		}
		email := strings.TrimSpace(data.EmailAddresses[0].EmailAddress)
		if email == "" {
			return nil, invalidField("email_addresses", "email_addresses must contain an email address")
		}
		return UserCreated{OAuthID: data.ID, Email: email, Username: data.Username}, nil

	case TypeUserUpdated:
		var data userUpdatedData
		if err := bindData(env.Data, &data); err != nil {
			return nil, err
		}
		return UserUpdated{OAuthID: data.ID, Username: data.Username}, nil

	case TypeUserDeleted:
		var data userDeletedData
		if err := bindData(env.Data, &data); err != nil {
			return nil, err
		}
		return UserDeleted{OAuthID: data.ID}, nil

	default:
		return Unknown{EventType: env.Type, Data: env.Data}, nil
	}
}

func bindData(data any, dst any) error {
	if err := eventValidator.Bind(data, dst, false); err != nil {
		var verr *utils.ValidationError
		if errors.As(err, &verr) {
			for i := range verr.Errors {
				verr.Errors[i].Field = "data." + verr.Errors[i].Field
			}
		}
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return nil
}

func invalidField(field, message string) error {
	return fmt.Errorf("%w: %w", ErrInvalidEvent, &utils.ValidationError{
		Errors: []utils.FieldError{{Field: "data." + field, Message: message}},
	})
}
