package distribution_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"seminar/internal/distribution"
	"seminar/internal/records"
	"seminar/internal/store"
)

type fakeMailer struct {
	enabled bool
	sent    []string
	failTo  string
}

func (f *fakeMailer) Enabled() bool { return f.enabled }

func (f *fakeMailer) Send(_ context.Context, to, _, _ string) error {
	if to == f.failTo {
		return errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakePoster struct {
	enabled bool
	posts   []string
	failFor string
}

func (f *fakePoster) Enabled() bool           { return f.enabled }
func (f *fakePoster) DefaultItemType() string { return "assignment" }

func (f *fakePoster) PostGrade(_ context.Context, courseRef, itemType, itemRef, userRef, grade, _ string) error {
	if userRef == f.failFor {
		return errors.New("user not enrolled")
	}
	f.posts = append(f.posts, courseRef+"/"+itemType+"/"+itemRef+"/"+userRef+"="+grade)
	return nil
}

func newCatalog(t *testing.T) *records.Catalog {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "seminar.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return records.NewCatalog(st)
}

func seedGroupDiscussion(t *testing.T, catalog *records.Catalog) *records.Discussion {
	t.Helper()
	ctx := context.Background()
	disc, err := catalog.NewDiscussion(ctx, "rec-1.mp4", "rec-1.mp4", "2026-03-14", "B", "PHIL101")
	if err != nil {
		t.Fatalf("NewDiscussion: %v", err)
	}
	if err := catalog.UpdateDiscussion(ctx, disc.ID, store.Fields{
		"status":         string(records.StatusReview),
		"grade":          "8.5",
		"group_feedback": "Strong discussion.",
		"approved":       "true",
		"gradebook_item": "disc-week-7",
	}); err != nil {
		t.Fatalf("UpdateDiscussion: %v", err)
	}
	disc, err = catalog.GetDiscussion(ctx, disc.ID)
	if err != nil {
		t.Fatalf("GetDiscussion: %v", err)
	}
	return disc
}

func addParticipant(t *testing.T, catalog *records.Catalog, name, contact, gradebookUser string) *records.Participant {
	t.Helper()
	p, err := catalog.UpsertParticipant(context.Background(), name, "B", "PHIL101", store.Fields{
		"contact":        contact,
		"gradebook_user": gradebookUser,
	})
	if err != nil {
		t.Fatalf("UpsertParticipant: %v", err)
	}
	return p
}

func enableChannel(t *testing.T, catalog *records.Catalog, key string) {
	t.Helper()
	if err := catalog.SetSetting(context.Background(), records.ScopeGlobal, "", key, "true"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
}

func TestGroupSendMailOnly(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)
	disc := seedGroupDiscussion(t, catalog)
	addParticipant(t, catalog, "Priya", "priya@example.edu", "u1")
	addParticipant(t, catalog, "Marcus", "marcus@example.edu", "u2")
	enableChannel(t, catalog, records.KeyChannelMail)

	mailer := &fakeMailer{enabled: true}
	svc := distribution.NewService(catalog, mailer, &fakePoster{enabled: true}, 0, nil)

	result, err := svc.SendApproved(ctx, disc.ID)
	if err != nil {
		t.Fatalf("SendApproved: %v", err)
	}
	if result.Sent != 2 || result.Failed != 0 {
		t.Fatalf("result = %+v", result)
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("mail sent to %v", mailer.sent)
	}
	updated, err := catalog.GetDiscussion(ctx, disc.ID)
	if err != nil {
		t.Fatalf("GetDiscussion: %v", err)
	}
	if updated.Status != records.StatusSent {
		t.Fatalf("status = %s", updated.Status)
	}
}

func TestPartialFailureContinuesAndMarksSent(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)
	disc := seedGroupDiscussion(t, catalog)
	if err := catalog.SetSetting(ctx, records.ScopeGlobal, "", records.KeyMode, "individual"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	enableChannel(t, catalog, records.KeyChannelGradebook)

	maria := addParticipant(t, catalog, "Maria", "maria@example.edu", "u-maria")
	james := addParticipant(t, catalog, "James", "james@example.edu", "")
	for _, p := range []*records.Participant{maria, james} {
		report, err := catalog.EnsureReport(ctx, disc.ID, p.ID, p.Name+" lines")
		if err != nil {
			t.Fatalf("EnsureReport: %v", err)
		}
		if err := catalog.UpdateReport(ctx, report.ID, store.Fields{
			"grade":    "7",
			"feedback": "Good work.",
			"approved": "true",
		}); err != nil {
			t.Fatalf("UpdateReport: %v", err)
		}
	}

	poster := &fakePoster{enabled: true}
	svc := distribution.NewService(catalog, &fakeMailer{enabled: true}, poster, 0, nil)

	result, err := svc.SendApproved(ctx, disc.ID)
	if err != nil {
		t.Fatalf("SendApproved: %v", err)
	}
	if result.Sent != 1 || result.Failed != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "James") {
		t.Fatalf("errors = %v", result.Errors)
	}

	reports, err := catalog.ReportsForDiscussion(ctx, disc.ID)
	if err != nil {
		t.Fatalf("ReportsForDiscussion: %v", err)
	}
	for _, report := range reports {
		wantSent := report.ParticipantID == maria.ID
		if report.Sent != wantSent {
			t.Fatalf("report for participant %d sent=%v want %v", report.ParticipantID, report.Sent, wantSent)
		}
	}

	updated, err := catalog.GetDiscussion(ctx, disc.ID)
	if err != nil {
		t.Fatalf("GetDiscussion: %v", err)
	}
	if updated.Status != records.StatusSent {
		t.Fatalf("batch failures must not block the sent transition, status = %s", updated.Status)
	}
	if !strings.Contains(updated.ErrorLog, "gradebook reference") {
		t.Fatalf("error log = %q", updated.ErrorLog)
	}
}

func TestSentDiscussionIsNoOp(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)
	disc := seedGroupDiscussion(t, catalog)
	if err := catalog.SetDiscussionStatus(ctx, disc.ID, records.StatusSent, "Distribution complete"); err != nil {
		t.Fatalf("SetDiscussionStatus: %v", err)
	}
	mailer := &fakeMailer{enabled: true}
	enableChannel(t, catalog, records.KeyChannelMail)
	svc := distribution.NewService(catalog, mailer, &fakePoster{enabled: true}, 0, nil)

	result, err := svc.SendApproved(ctx, disc.ID)
	if err != nil {
		t.Fatalf("SendApproved: %v", err)
	}
	if result.Sent != 0 || len(mailer.sent) != 0 {
		t.Fatalf("sent discussion must not re-send, result=%+v mailer=%v", result, mailer.sent)
	}
}

func TestUnapprovedGroupDiscussionRejected(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)
	disc := seedGroupDiscussion(t, catalog)
	if err := catalog.UpdateDiscussion(ctx, disc.ID, store.Fields{"approved": "false"}); err != nil {
		t.Fatalf("UpdateDiscussion: %v", err)
	}
	svc := distribution.NewService(catalog, &fakeMailer{enabled: true}, &fakePoster{enabled: true}, 0, nil)
	if _, err := svc.SendApproved(ctx, disc.ID); err == nil {
		t.Fatal("expected error for unapproved discussion")
	}
}

func TestIndividualModeRejectsSendWithoutApprovedReports(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)
	disc := seedGroupDiscussion(t, catalog)
	if err := catalog.SetSetting(ctx, records.ScopeGlobal, "", records.KeyMode, "individual"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	p := addParticipant(t, catalog, "Priya", "priya@example.edu", "u1")
	if _, err := catalog.EnsureReport(ctx, disc.ID, p.ID, "Priya: Hi."); err != nil {
		t.Fatalf("EnsureReport: %v", err)
	}
	mailer := &fakeMailer{enabled: true}
	enableChannel(t, catalog, records.KeyChannelMail)
	svc := distribution.NewService(catalog, mailer, &fakePoster{enabled: true}, 0, nil)

	// The only report is unapproved, so there is nothing to deliver and the
	// discussion must stay reachable for the reviewer.
	if _, err := svc.SendApproved(ctx, disc.ID); err == nil {
		t.Fatal("expected error with no approved reports")
	}
	updated, err := catalog.GetDiscussion(ctx, disc.ID)
	if err != nil {
		t.Fatalf("GetDiscussion: %v", err)
	}
	if updated.Status != records.StatusReview {
		t.Fatalf("status = %s, want review", updated.Status)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("unexpected mail: %v", mailer.sent)
	}
}

func TestGradebookPostUsesCourseOverlay(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)
	disc := seedGroupDiscussion(t, catalog)
	addParticipant(t, catalog, "Priya", "priya@example.edu", "u1")
	enableChannel(t, catalog, records.KeyChannelGradebook)
	if _, err := catalog.UpsertCourse(ctx, "PHIL101", store.Fields{
		"gradebook_course": "20871",
		"item_type":        "quiz",
	}); err != nil {
		t.Fatalf("UpsertCourse: %v", err)
	}

	poster := &fakePoster{enabled: true}
	svc := distribution.NewService(catalog, &fakeMailer{enabled: true}, poster, 0, nil)
	if _, err := svc.SendApproved(ctx, disc.ID); err != nil {
		t.Fatalf("SendApproved: %v", err)
	}
	if len(poster.posts) != 1 || poster.posts[0] != "20871/quiz/disc-week-7/u1=8.5" {
		t.Fatalf("posts = %v", poster.posts)
	}
}
