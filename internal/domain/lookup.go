package domain

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LookupKind identifies which combination of alternate keys a caller supplied
// for a multi-key user lookup or delete.
type LookupKind int

const (
	LookupNone LookupKind = iota
	LookupByID
	LookupByUsername
	LookupByEmail
	LookupByUsernameAndEmail
	LookupByIDAndUsername
)

// UserLookup is the resolved lookup key for a user. Exactly the fields implied
// by Kind are populated.
type UserLookup struct {
	Kind     LookupKind
	ID       primitive.ObjectID
	Username string
	Email    string
}

// ResolveUserLookup selects the lookup kind from whichever parameters are
// non-empty. Conjunctions win over single keys; the order is fixed so every
// multi-key entry point dispatches identically. A malformed id is treated the
// same as an absent one.
func ResolveUserLookup(id, username, email string) UserLookup {
	oid, idOK := parseObjectID(id)

	switch {
	case idOK && username != "":
		return UserLookup{Kind: LookupByIDAndUsername, ID: oid, Username: username}
	case username != "" && email != "":
		return UserLookup{Kind: LookupByUsernameAndEmail, Username: username, Email: email}
	case idOK:
		return UserLookup{Kind: LookupByID, ID: oid}
	case username != "":
		return UserLookup{Kind: LookupByUsername, Username: username}
	case email != "":
		return UserLookup{Kind: LookupByEmail, Email: email}
	default:
		return UserLookup{Kind: LookupNone}
	}
}

// ClassifyUserKey resolves a single path segment that may be an id (24-char
// hex), an email (contains '@') or a username.
func ClassifyUserKey(key string) UserLookup {
	if oid, ok := parseObjectID(key); ok {
		return UserLookup{Kind: LookupByID, ID: oid}
	}
	if strings.Contains(key, "@") {
		return UserLookup{Kind: LookupByEmail, Email: key}
	}
	if key != "" {
		return UserLookup{Kind: LookupByUsername, Username: key}
	}
	return UserLookup{Kind: LookupNone}
}

func parseObjectID(s string) (primitive.ObjectID, bool) {
	if len(s) != 24 {
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}
