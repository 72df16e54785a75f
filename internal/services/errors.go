package services

import "errors"

var (
	// ErrConversationNotFound is returned when a conversation does not
	// exist or is not owned by the requesting user.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrClientNotFound is returned when a client-scoped operation
	// references a missing client.
	ErrClientNotFound = errors.New("client not found")

	// ErrClientIDRequired is returned when a client conversation is
	// created without a client id, or a non-client conversation with one.
	ErrClientIDRequired = errors.New("client conversations require a client_id; other types must not set one")

	// ErrInvalidChatType is returned for an unrecognized chat type.
	ErrInvalidChatType = errors.New("invalid chat type")

	// ErrMalformedResponse is returned when the provider was asked for
	// structured output and returned something that does not parse.
	ErrMalformedResponse = errors.New("malformed provider response")
)
