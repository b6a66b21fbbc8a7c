package gradebook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func TestRosterDrainsAllPages(t *testing.T) {
	students := make([]RosterEntry, 0, 5)
	for i := 0; i < 5; i++ {
		students = append(students, RosterEntry{
			UserRef: strconv.Itoa(1000 + i),
			Name:    "Student " + strconv.Itoa(i),
			Email:   "s" + strconv.Itoa(i) + "@example.edu",
			Section: "B",
		})
	}

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/courses/PHIL101/students" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		if perPage != 2 {
			t.Fatalf("unexpected per_page %d", perPage)
		}
		start := (page - 1) * perPage
		end := start + perPage
		if start > len(students) {
			start = len(students)
		}
		if end > len(students) {
			end = len(students)
		}
		_ = json.NewEncoder(w).Encode(students[start:end])
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Token: "secret", PageSize: 2})
	roster, err := client.Roster(context.Background(), "PHIL101")
	if err != nil {
		t.Fatalf("Roster returned error: %v", err)
	}
	if len(roster) != 5 {
		t.Fatalf("expected 5 roster entries, got %d", len(roster))
	}
	if requests != 3 {
		t.Fatalf("expected 3 page requests, got %d", requests)
	}
	if roster[4].Name != "Student 4" {
		t.Fatalf("unexpected last entry: %+v", roster[4])
	}
}

func TestRosterErrorIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("no such course"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Token: "secret"})
	if _, err := client.Roster(context.Background(), "GHOST999"); err == nil {
		t.Fatal("expected roster error for missing course")
	}
}

func TestPostGradeSendsGradeAndComment(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Fatalf("unexpected method %s", r.Method)
		}
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Token: "secret", DefaultItemType: "assignment"})
	err := client.PostGrade(context.Background(), "PHIL101", "", "disc-week-3", "1042", "92", "Strong engagement with the text.")
	if err != nil {
		t.Fatalf("PostGrade returned error: %v", err)
	}
	if gotPath != "/courses/PHIL101/assignments/disc-week-3/grades/1042" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody["grade"] != "92" {
		t.Fatalf("unexpected grade %q", gotBody["grade"])
	}
	if gotBody["comment"] != "Strong engagement with the text." {
		t.Fatalf("unexpected comment %q", gotBody["comment"])
	}
}

func TestPostGradeHonorsItemTypeOverride(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Token: "secret"})
	if err := client.PostGrade(context.Background(), "PHIL101", "discussion", "week-3", "1042", "90", "ok"); err != nil {
		t.Fatalf("PostGrade returned error: %v", err)
	}
	if gotPath != "/courses/PHIL101/discussions/week-3/grades/1042" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestPostGradeFailureSurfacesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("grade out of range"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Token: "secret"})
	err := client.PostGrade(context.Background(), "PHIL101", "", "week-3", "1042", "900", "oops")
	if err == nil {
		t.Fatal("expected error for rejected grade")
	}
}

func TestClientDisabledWithoutBaseURL(t *testing.T) {
	client := NewClient(Config{})
	if client.Enabled() {
		t.Fatal("expected client to be disabled without base url")
	}
	if _, err := client.Roster(context.Background(), "PHIL101"); err == nil {
		t.Fatal("expected error from disabled client")
	}
}
