// Package driver holds the driver record model and the pure decision logic
// that turns a document-created event into an effect.
package driver

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// PathPattern is the document path the trigger is registered against.
const PathPattern = "drivers/{driverId}"

// ErrMalformedPayload reports a snapshot whose fields have an unexpected shape.
var ErrMalformedPayload = errors.New("malformed driver payload")

// Record is the part of a driver document this service reads.
type Record struct {
	Email    string `json:"email" bson:"email"`
	FullName string `json:"fullName" bson:"fullName"`
}

// CreatedEvent is a document-created event for a driver document.
// A nil Data means the event carried no snapshot.
type CreatedEvent struct {
	ID         string         `json:"id"`
	Path       string         `json:"document"`
	DriverID   string         `json:"driver_id"`
	Data       map[string]any `json:"data"`
	ReceivedAt time.Time      `json:"received_at"`
}

// RecordFromData reads email and fullName from a document snapshot.
// Missing or nil keys yield empty strings. An email that is not a string
// counts as absent when it holds a zero value (false, 0, empty list or map)
// and is malformed otherwise. A non-string fullName is formatted as text.
func RecordFromData(data map[string]any) (Record, error) {
	email, err := emailField(data)
	if err != nil {
		return Record{}, err
	}
	return Record{Email: email, FullName: nameField(data)}, nil
}

func emailField(data map[string]any) (string, error) {
	v, ok := data["email"]
	if !ok || v == nil {
		return "", nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	if isEmpty(v) {
		return "", nil
	}
	return "", fmt.Errorf("%w: field %q is %T, want string", ErrMalformedPayload, "email", v)
}

func nameField(data map[string]any) string {
	v, ok := data["fullName"]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// isEmpty reports whether v is false, zero, or an empty collection.
func isEmpty(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	default:
		return false
	}
}

// MatchPath matches a concrete document path such as "drivers/abc" against a
// pattern such as "drivers/{driverId}" and returns the wildcard value.
func MatchPath(pattern, path string) (string, bool) {
	pp := strings.Split(strings.Trim(pattern, "/"), "/")
	dp := strings.Split(strings.Trim(path, "/"), "/")
	if len(pp) != len(dp) {
		return "", false
	}

	var id string
	for i, seg := range pp {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if dp[i] == "" {
				return "", false
			}
			id = dp[i]
			continue
		}
		if seg != dp[i] {
			return "", false
		}
	}
	return id, true
}
