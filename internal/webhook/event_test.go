package webhook

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/prperemyshlev/identity-sync-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var verr *utils.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	fields := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		fields = append(fields, fe.Field)
	}
	return fields
}

func TestParseEvent_UserCreated(t *testing.T) {
	event, err := ParseEvent([]byte(`{"type":"user.created","data":{"id":"ext_9","email_addresses":[{"email_address":" a@b.com "},{"email_address":"second@b.com"}],"username":null}}`))
	require.NoError(t, err)

	assert.Equal(t, UserCreated{OAuthID: "ext_9", Email: "a@b.com"}, event)
	assert.Equal(t, TypeUserCreated, event.Type())
}

func TestParseEvent_UserCreatedRequiresEmail(t *testing.T) {
	payloads := []string{
		`{"type":"user.created","data":{"id":"ext_9"}}`,
		`{"type":"user.created","data":{"id":"ext_9","email_addresses":[]}}`,
		`{"type":"user.created","data":{"id":"ext_9","email_addresses":[{"email_address":"  "}]}}`,
	}

	for _, p := range payloads {
		_, err := ParseEvent([]byte(p))
		assert.ErrorIs(t, err, ErrInvalidEvent, p)
		assert.Equal(t, []string{"data.email_addresses"}, fieldsOf(t, err), p)
	}
}

func TestParseEvent_UserUpdated(t *testing.T) {
	event, err := ParseEvent([]byte(`{"type":"user.updated","data":{"id":"ext_9","username":"bob"}}`))
	require.NoError(t, err)

	updated, ok := event.(UserUpdated)
	require.True(t, ok)
	assert.Equal(t, "ext_9", updated.OAuthID)
	require.NotNil(t, updated.Username)
	assert.Equal(t, "bob", *updated.Username)

	event, err = ParseEvent([]byte(`{"type":"user.updated","data":{"id":"ext_9"}}`))
	require.NoError(t, err)
	assert.Equal(t, UserUpdated{OAuthID: "ext_9"}, event)
}

func TestParseEvent_UserDeletedRequiresID(t *testing.T) {
	event, err := ParseEvent([]byte(`{"type":"user.deleted","data":{"id":"ext_9","deleted":true}}`))
	require.NoError(t, err)
	assert.Equal(t, UserDeleted{OAuthID: "ext_9"}, event)

	for _, p := range []string{
		`{"type":"user.deleted","data":{"deleted":true}}`,
		`{"type":"user.deleted"}`,
	} {
		_, err := ParseEvent([]byte(p))
		assert.ErrorIs(t, err, ErrInvalidEvent, p)
		assert.Equal(t, []string{"data.id"}, fieldsOf(t, err), p)
	}
}

func TestParseEvent_UnknownTypes(t *testing.T) {
	event, err := ParseEvent([]byte(`{"type":"session.created","data":{"id":"sess_1"}}`))
	require.NoError(t, err)

	unknown, ok := event.(Unknown)
	require.True(t, ok)
	assert.Equal(t, "session.created", unknown.Type())
	assert.Equal(t, map[string]any{"id": "sess_1"}, unknown.Data)

	event, err = ParseEvent([]byte(`{"data":{}}`))
	require.NoError(t, err)
	assert.Equal(t, Unknown{EventType: "", Data: map[string]any{}}, event)
}

func TestParseEvent_DoubleEncodedBody(t *testing.T) {
	once, err := json.Marshal(`{"type":"user.deleted","data":{"id":"ext_9"}}`)
	require.NoError(t, err)

	event, err := ParseEvent(once)
	require.NoError(t, err)
	assert.Equal(t, UserDeleted{OAuthID: "ext_9"}, event)
}

func TestParseEvent_NotAnObject(t *testing.T) {
	for _, p := range []string{`not json`, `[1,2]`, `"text"`} {
		_, err := ParseEvent([]byte(p))
		assert.ErrorIs(t, err, ErrInvalidEvent, p)
	}
}
