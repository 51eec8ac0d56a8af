package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
)

func createTitle(t *testing.T, r http.Handler, token, name string) uint {
	t.Helper()
	status, body := doJSON(t, r, http.MethodPost, "/api/titles", token, map[string]interface{}{
		"name":     name,
		"category": "book",
		"author":   "Somebody",
	})
	if status != http.StatusCreated {
		t.Fatalf("create title: status %d, body %v", status, body)
	}
	return uint(numField(t, body, "id"))
}

func createRecap(t *testing.T, r http.Handler, token string, titleID uint, text string) uint {
	t.Helper()
	status, body := doJSON(t, r, http.MethodPost, "/api/recaps", token, map[string]interface{}{
		"title_id": titleID,
		"text":     text,
	})
	if status != http.StatusCreated {
		t.Fatalf("create recap: status %d, body %v", status, body)
	}
	return uint(numField(t, body, "id"))
}

func vote(t *testing.T, r http.Handler, token string, recapID uint, value int) (int, map[string]interface{}) {
	t.Helper()
	return doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/recaps/%d/vote", recapID), token,
		map[string]interface{}{"value": value})
}

func TestVoteEndpointCycle(t *testing.T) {
	r, _ := newTestServer(t)
	authorToken, _ := registerUser(t, r, "author@example.com")
	voterToken, _ := registerUser(t, r, "voter@example.com")

	titleID := createTitle(t, r, authorToken, "1984")
	recapID := createRecap(t, r, authorToken, titleID, "Big Brother is watching you.")

	status, body := vote(t, r, voterToken, recapID, 1)
	if status != http.StatusOK {
		t.Fatalf("upvote: status %d, body %v", status, body)
	}
	if numField(t, body, "score") != 1 || numField(t, body, "upvotes") != 1 {
		t.Fatalf("after upvote: %v", body)
	}
	if numField(t, body, "current_user_vote") != 1 {
		t.Fatalf("current_user_vote = %v, want 1", body["current_user_vote"])
	}

	status, body = vote(t, r, voterToken, recapID, -1)
	if status != http.StatusOK || numField(t, body, "score") != -1 || numField(t, body, "downvotes") != 1 {
		t.Fatalf("after switch: status %d, body %v", status, body)
	}

	status, body = vote(t, r, voterToken, recapID, 0)
	if status != http.StatusOK || numField(t, body, "score") != 0 {
		t.Fatalf("after retract: status %d, body %v", status, body)
	}
	if body["current_user_vote"] != nil {
		t.Fatalf("current_user_vote after retract = %v, want null", body["current_user_vote"])
	}
}

func TestVoteEndpointRejectsOutOfRange(t *testing.T) {
	r, _ := newTestServer(t)
	authorToken, _ := registerUser(t, r, "author@example.com")
	voterToken, _ := registerUser(t, r, "voter@example.com")
	titleID := createTitle(t, r, authorToken, "Dune")
	recapID := createRecap(t, r, authorToken, titleID, "Fear is the mind-killer.")

	status, _ := vote(t, r, voterToken, recapID, 2)
	if status != http.StatusBadRequest {
		t.Fatalf("value 2: status %d, want 400", status)
	}

	// State untouched.
	status, body := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/recaps/%d", recapID), "", nil)
	if status != http.StatusOK || numField(t, body, "score") != 0 {
		t.Fatalf("recap after rejected vote: status %d, body %v", status, body)
	}
}

func TestVoteEndpointRequiresAuth(t *testing.T) {
	r, _ := newTestServer(t)
	authorToken, _ := registerUser(t, r, "author@example.com")
	titleID := createTitle(t, r, authorToken, "Serial")
	recapID := createRecap(t, r, authorToken, titleID, "Tape hiss and suspense.")

	if status, _ := vote(t, r, "", recapID, 1); status != http.StatusUnauthorized {
		t.Fatalf("unauthenticated vote: status %d, want 401", status)
	}
}

func TestVoteEndpointMissingRecap(t *testing.T) {
	r, _ := newTestServer(t)
	voterToken, _ := registerUser(t, r, "voter@example.com")
	if status, _ := vote(t, r, voterToken, 424242, 1); status != http.StatusNotFound {
		t.Fatalf("vote on missing recap: status %d, want 404", status)
	}
}

func TestSelfVoteAllowed(t *testing.T) {
	r, _ := newTestServer(t)
	authorToken, _ := registerUser(t, r, "author@example.com")
	titleID := createTitle(t, r, authorToken, "Hamilton")
	recapID := createRecap(t, r, authorToken, titleID, "Rap battles on every beat.")

	status, body := vote(t, r, authorToken, recapID, 1)
	if status != http.StatusOK || numField(t, body, "score") != 1 {
		t.Fatalf("self vote: status %d, body %v", status, body)
	}
}

func TestDuplicateRecapRejected(t *testing.T) {
	r, _ := newTestServer(t)
	token, _ := registerUser(t, r, "author@example.com")
	titleID := createTitle(t, r, token, "Sapiens")
	createRecap(t, r, token, titleID, "History as a coffee chat.")

	status, _ := doJSON(t, r, http.MethodPost, "/api/recaps", token, map[string]interface{}{
		"title_id": titleID,
		"text":     "Second attempt.",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("duplicate recap: status %d, want 400", status)
	}
}

func TestRecapInvalidTitleRejected(t *testing.T) {
	r, _ := newTestServer(t)
	token, _ := registerUser(t, r, "author@example.com")

	status, _ := doJSON(t, r, http.MethodPost, "/api/recaps", token, map[string]interface{}{
		"title_id": 99999,
		"text":     "Pointing nowhere.",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("bad title: status %d, want 400", status)
	}
}

func TestRecapOwnerOnlyEditDelete(t *testing.T) {
	r, _ := newTestServer(t)
	authorToken, _ := registerUser(t, r, "author@example.com")
	otherToken, _ := registerUser(t, r, "other@example.com")
	titleID := createTitle(t, r, authorToken, "The Crown")
	recapID := createRecap(t, r, authorToken, titleID, "Tiaras and group chats.")

	path := fmt.Sprintf("/api/recaps/%d", recapID)
	if status, _ := doJSON(t, r, http.MethodPatch, path, otherToken, map[string]interface{}{"text": "hijacked"}); status != http.StatusForbidden {
		t.Fatalf("foreign edit: status %d, want 403", status)
	}
	if status, _ := doJSON(t, r, http.MethodDelete, path, otherToken, nil); status != http.StatusForbidden {
		t.Fatalf("foreign delete: status %d, want 403", status)
	}

	status, body := doJSON(t, r, http.MethodPatch, path, authorToken, map[string]interface{}{"text": "polished take"})
	if status != http.StatusOK || body["text"] != "polished take" {
		t.Fatalf("owner edit: status %d, body %v", status, body)
	}
	if status, _ := doJSON(t, r, http.MethodDelete, path, authorToken, nil); status != http.StatusNoContent {
		t.Fatalf("owner delete: status %d, want 204", status)
	}
	if status, _ := doJSON(t, r, http.MethodGet, path, "", nil); status != http.StatusNotFound {
		t.Fatalf("deleted recap fetch: status %d, want 404", status)
	}
}

func TestRecapTextSanitized(t *testing.T) {
	r, _ := newTestServer(t)
	token, _ := registerUser(t, r, "author@example.com")
	titleID := createTitle(t, r, token, "The Matrix")

	status, body := doJSON(t, r, http.MethodPost, "/api/recaps", token, map[string]interface{}{
		"title_id": titleID,
		"text":     "There is no <script>alert('spoon')</script>spoon.",
	})
	if status != http.StatusCreated {
		t.Fatalf("create: status %d, body %v", status, body)
	}
	if body["text"] != "There is no spoon." {
		t.Fatalf("text = %q, want markup stripped", body["text"])
	}
}
