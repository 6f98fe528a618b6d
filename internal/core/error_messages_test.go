package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "not found",
			err:         &LoadError{Kind: KindNotFound, Path: "zomato.csv"},
			wantCode:    "DATA001",
			wantMessage: "Dataset file not found at zomato.csv",
		},
		{
			name:        "empty",
			err:         &LoadError{Kind: KindEmpty, Path: "zomato.csv"},
			wantCode:    "DATA002",
			wantMessage: "Dataset file zomato.csv is empty",
		},
		{
			name:        "decode",
			err:         &LoadError{Kind: KindDecode, Path: "zomato.csv", Tried: []string{"utf-8", "latin1"}},
			wantCode:    "DATA003",
			wantMessage: "Dataset file could not be decoded (tried utf-8, latin1)",
		},
		{
			name:        "missing columns",
			err:         &LoadError{Kind: KindMissingFields, Missing: []string{"votes"}, Available: []string{"name", "address"}},
			wantCode:    "DATA004",
			wantMessage: "Dataset is missing required columns: votes. Available columns: name, address",
		},
		{
			name:        "unexpected",
			err:         &LoadError{Kind: KindUnexpected, Err: errors.New("boom")},
			wantCode:    "DATA005",
			wantMessage: "An unexpected error occurred while loading the dataset",
		},
		{
			name:        "wrapped load error",
			err:         fmt.Errorf("startup: %w", &LoadError{Kind: KindEmpty, Path: "a.csv"}),
			wantCode:    "DATA002",
			wantMessage: "Dataset file a.csv is empty",
		},
		{
			name:        "query error carries load cause",
			err:         &QueryError{Cause: &LoadError{Kind: KindNotFound, Path: "x.csv"}},
			wantCode:    "DATA001",
			wantMessage: "Dataset file not found at x.csv",
		},
		{
			name:        "query error without cause",
			err:         &QueryError{},
			wantCode:    "QRY003",
			wantMessage: "Restaurant data is not available",
		},
		{
			name:        "reload in progress",
			err:         ErrReloadInProgress,
			wantCode:    "RLD001",
			wantMessage: "A dataset reload is already in progress",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "deadline maps to timeout",
			err:         context.DeadlineExceeded,
			wantCode:    "REQ001",
			wantMessage: "The request timed out",
		},
		{
			name:        "cancelled",
			err:         context.Canceled,
			wantCode:    "REQ002",
			wantMessage: "The request was cancelled",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("RATE LIMIT hit"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMessage, got.Message)
		})
	}
}

func TestMapError_MissingColumnsAction(t *testing.T) {
	got := MapError(&LoadError{Kind: KindMissingFields, Missing: []string{"votes"}})
	assert.Contains(t, got.Action, "aggregate_rating", "Action should list the required columns")
}

func TestEmptyMessage(t *testing.T) {
	assert.Equal(t, "QRY001", EmptyMessage(ReasonNoCriteria).Code)
	assert.Equal(t, "QRY002", EmptyMessage(ReasonNoMatches).Code)
	assert.Equal(t, UserMessage{}, EmptyMessage(ReasonNone))
}

func TestFormatUserError(t *testing.T) {
	assert.Equal(t,
		"Too many requests (Code: RATE001). Please wait a moment before trying again",
		FormatUserError(errors.New("rate limit exceeded")))
	assert.Empty(t, FormatUserError(nil))
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "load error is user facing",
			err:  &LoadError{Kind: KindEmpty},
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUserFacing(tt.err))
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.Nil(t, NewUserError(nil))
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := errors.New("rate limit: 121 > 120")
		userErr := NewUserError(techErr)

		assert.Equal(t, "Too many requests", userErr.Error())
		assert.ErrorIs(t, userErr, techErr)
		assert.Equal(t, userErr.User, MapError(userErr))
	})
}
