package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(E(KindConflict, "dup")); got != KindConflict {
		t.Fatalf("expected conflict, got %v", got)
	}
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Fatalf("plain errors must classify as internal, got %v", got)
	}
	if got := KindOf(nil); got != KindInternal {
		t.Fatalf("nil classifies as internal, got %v", got)
	}
}

func TestKindOfWrappedChain(t *testing.T) {
	inner := E(KindNotFound, "row missing")
	outer := fmt.Errorf("loading user: %w", inner)
	if got := KindOf(outer); got != KindNotFound {
		t.Fatalf("kind must survive fmt wrapping, got %v", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindInternal, "user create", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause must be reachable via errors.Is")
	}
	if err.Error() != "user create: connection refused" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestIsKind(t *testing.T) {
	err := E(KindForbidden, "forbidden")
	if !IsKind(err, KindForbidden) {
		t.Fatal("expected forbidden match")
	}
	if IsKind(err, KindNotFound) {
		t.Fatal("kinds must not cross-match")
	}
	if IsKind(nil, KindInternal) {
		t.Fatal("nil is never any kind")
	}
}

func TestKindString(t *testing.T) {
	pairs := map[Kind]string{
		KindInternal:     "internal",
		KindConflict:     "conflict",
		KindUnauthorized: "unauthorized",
		KindForbidden:    "forbidden",
		KindNotFound:     "not_found",
	}
	for k, want := range pairs {
		if k.String() != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, k.String(), want)
		}
	}
}
