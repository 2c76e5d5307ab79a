package contextx

import "testing"

func TestWithActorRoundTrip(t *testing.T) {
	ctx := WithActor(t.Context(), Actor{HostID: "bzfs-1"})

	got, ok := ActorFromContext(ctx)
	if !ok {
		t.Fatal("expected actor in context")
	}
	if got.HostID != "bzfs-1" {
		t.Fatalf("HostID: got %q, want %q", got.HostID, "bzfs-1")
	}
}

func TestActorFromContextMissing(t *testing.T) {
	if _, ok := ActorFromContext(t.Context()); ok {
		t.Fatal("expected no actor in empty context")
	}
}
