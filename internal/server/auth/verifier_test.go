package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "ok", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "empty", header: "", wantErr: true},
		{name: "scheme only", header: "Bearer", wantErr: true},
		{name: "scheme and space", header: "Bearer ", wantErr: true},
		{name: "lowercase scheme", header: "bearer abc", wantErr: true},
		{name: "basic scheme", header: "Basic abc", wantErr: true},
		{name: "token without scheme", header: "abc.def.ghi", wantErr: true},
		{name: "extra part", header: "Bearer abc def", wantErr: true},
		{name: "double space", header: "Bearer  abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr {
				if !errors.Is(err, common.ErrMissingCredential) {
					t.Fatalf("want ErrMissingCredential, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestVerifier_Authenticate(t *testing.T) {
	t.Parallel()

	clock := &testClock{t: time.Now()}
	s := newTestTokenService(t, clock)
	v := NewVerifier(s)

	pair, err := s.IssuePair("u1", "u1@x.com")
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}

	id, err := v.Authenticate("Bearer " + pair.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if id.SubjectID != "u1" {
		t.Fatalf("unexpected subject %q", id.SubjectID)
	}

	if _, err := v.Authenticate(""); !errors.Is(err, common.ErrMissingCredential) {
		t.Fatalf("want ErrMissingCredential, got %v", err)
	}
	if _, err := v.Authenticate("Bearer " + pair.RefreshToken); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for refresh token, got %v", err)
	}

	clock.t = clock.t.Add(time.Hour)
	if _, err := v.Authenticate("Bearer " + pair.AccessToken); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for expired token, got %v", err)
	}
}

func TestIdentityContext(t *testing.T) {
	t.Parallel()

	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatal("empty context must not carry an identity")
	}

	ctx := WithIdentity(context.Background(), &Identity{SubjectID: "u1", Email: "e"})
	id, ok := IdentityFromContext(ctx)
	if !ok || id.SubjectID != "u1" {
		t.Fatalf("identity not propagated: %+v %v", id, ok)
	}
}
