package nakama

import (
	"context"
	"testing"

	"gamepot/internal/app"
	"gamepot/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

func errCode(t *testing.T, err error) int {
	t.Helper()
	rerr, ok := err.(*runtime.Error)
	if !ok {
		t.Fatalf("expected *runtime.Error, got %T: %v", err, err)
	}
	return int(rerr.Code)
}

func TestRpcErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not controller", app.ErrNotController, codePermissionDenied},
		{"not mod or owner", app.ErrNotModOrOwner, codePermissionDenied},
		{"not owner", domain.ErrNotOwner, codePermissionDenied},
		{"pool not found", domain.ErrPoolNotFound, codeNotFound},
		{"game not found", domain.ErrGameNotFound, codeNotFound},
		{"pool not open", domain.ErrPoolNotOpen, codeFailedPrecondition},
		{"already joined", domain.ErrAlreadyJoined, codeFailedPrecondition},
		{"insufficient credits", domain.ErrInsufficientCredits, codeFailedPrecondition},
		{"no price", app.ErrNoPrice, codeFailedPrecondition},
		{"invalid amount", domain.ErrInvalidAmount, codeInvalidArgument},
		{"leaderboard mismatch", domain.ErrLeaderboardMismatch, codeInvalidArgument},
		{"unknown", context.DeadlineExceeded, codeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := errCode(t, rpcError(tc.err)); got != tc.code {
				t.Fatalf("rpcError(%v) code = %d, want %d", tc.err, got, tc.code)
			}
		})
	}

	if err := rpcError(nil); err != nil {
		t.Fatalf("rpcError(nil) = %v, want nil", err)
	}
}

func TestCallerRequiresIdentity(t *testing.T) {
	if _, err := caller(context.Background()); err == nil {
		t.Fatal("expected error without user id in context")
	} else if errCode(t, err) != codeUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}

	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, "u1")
	userID, err := caller(ctx)
	if err != nil {
		t.Fatalf("caller: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("caller = %q, want u1", userID)
	}
}
