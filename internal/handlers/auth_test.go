package handlers

import (
	"errors"
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestLoginLookupStatusMissingUserIsUnauthorized(t *testing.T) {
	status, message := loginLookupStatus(mongo.ErrNoDocuments)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a missing user, got %d", status)
	}
	if message != "invalid credentials" {
		t.Fatalf("expected the uniform credential error, got %q", message)
	}
}

func TestLoginLookupStatusInfrastructureFailureIsInternal(t *testing.T) {
	status, message := loginLookupStatus(errors.New("connection reset"))
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500 for an infrastructure failure, got %d", status)
	}
	if message == "invalid credentials" {
		t.Fatal("expected an outage to not masquerade as a credential failure")
	}
}
