package main

import (
	"context"
	"strconv"
	"testing"

	"seminar/internal/records"
	"seminar/internal/store"
)

func TestListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "No discussions found")
}

func TestListAndShow(t *testing.T) {
	env := setupCLITestEnv(t)
	disc := env.seedDiscussion(t)

	out, _, err := runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "rec-1.mp4")
	requireContains(t, out, "PHIL101")
	requireContains(t, out, "uploaded 1")

	out, _, err = runCLI(t, []string{"show", strconv.FormatInt(disc.ID, 10)}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "rec-1.mp4")
	requireContains(t, out, "2026-03-14")

	_, _, err = runCLI(t, []string{"show", "999"}, env.configPath)
	if err == nil {
		t.Fatal("expected show of unknown discussion to fail")
	}
}

func TestGradeGroupMode(t *testing.T) {
	env := setupCLITestEnv(t)
	disc := env.seedDiscussion(t)
	ctx := context.Background()

	id := strconv.FormatInt(disc.ID, 10)
	_, _, err := runCLI(t, []string{"grade", id, "8.5"}, env.configPath)
	if err == nil {
		t.Fatal("expected grading outside review to fail")
	}

	if err := env.catalog.SetDiscussionStatus(ctx, disc.ID, records.StatusReview, "Awaiting grades"); err != nil {
		t.Fatalf("set status: %v", err)
	}
	out, _, err := runCLI(t, []string{"grade", id, "8.5"}, env.configPath)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	requireContains(t, out, "Recorded grade 8.5")

	updated, err := env.catalog.GetDiscussion(ctx, disc.ID)
	if err != nil {
		t.Fatalf("get discussion: %v", err)
	}
	if updated.Grade != "8.5" {
		t.Fatalf("expected stored grade 8.5, got %q", updated.Grade)
	}
}

func TestApproveGroupModeRequiresFeedback(t *testing.T) {
	env := setupCLITestEnv(t)
	disc := env.seedDiscussion(t)
	ctx := context.Background()

	id := strconv.FormatInt(disc.ID, 10)
	if err := env.catalog.SetDiscussionStatus(ctx, disc.ID, records.StatusReview, "Awaiting grades"); err != nil {
		t.Fatalf("set status: %v", err)
	}

	_, _, err := runCLI(t, []string{"approve", id}, env.configPath)
	if err == nil {
		t.Fatal("expected approval without feedback to fail")
	}

	if err := env.catalog.UpdateDiscussion(ctx, disc.ID, store.Fields{"group_feedback": "Solid discussion."}); err != nil {
		t.Fatalf("set feedback: %v", err)
	}
	out, _, err := runCLI(t, []string{"approve", id}, env.configPath)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	requireContains(t, out, "Approved discussion")

	updated, err := env.catalog.GetDiscussion(ctx, disc.ID)
	if err != nil {
		t.Fatalf("get discussion: %v", err)
	}
	if !updated.Approved || updated.Status != records.StatusApproved {
		t.Fatalf("expected approved discussion, got approved=%v status=%s", updated.Approved, updated.Status)
	}
}

func TestSpeakersConfirm(t *testing.T) {
	env := setupCLITestEnv(t)
	disc := env.seedDiscussion(t)
	ctx := context.Background()

	utterances := []records.Utterance{
		{Speaker: "SPEAKER_00", Text: "Opening point."},
		{Speaker: "SPEAKER_01", Text: "Counterpoint."},
	}
	encoded, err := records.EncodeUtterances(utterances)
	if err != nil {
		t.Fatalf("encode utterances: %v", err)
	}
	if _, err := env.catalog.UpsertTranscript(ctx, disc.ID, store.Fields{"utterances_json": encoded}); err != nil {
		t.Fatalf("seed transcript: %v", err)
	}
	for _, label := range []string{"SPEAKER_00", "SPEAKER_01"} {
		if _, err := env.catalog.UpsertSpeakerMapping(ctx, disc.ID, label, store.Fields{"suggested_name": ""}); err != nil {
			t.Fatalf("seed mapping: %v", err)
		}
	}

	id := strconv.FormatInt(disc.ID, 10)
	out, _, err := runCLI(t, []string{"speakers", "list", id}, env.configPath)
	if err != nil {
		t.Fatalf("speakers list: %v", err)
	}
	requireContains(t, out, "SPEAKER_00")

	out, _, err = runCLI(t, []string{"speakers", "confirm", id, "SPEAKER_00", "Priya Shah"}, env.configPath)
	if err != nil {
		t.Fatalf("speakers confirm: %v", err)
	}
	requireContains(t, out, "Confirmed SPEAKER_00 as Priya Shah")

	_, _, err = runCLI(t, []string{"speakers", "confirm-all", id}, env.configPath)
	if err == nil {
		t.Fatal("expected confirm-all to fail when a label has no suggestion")
	}

	transcript, err := env.catalog.TranscriptForDiscussion(ctx, disc.ID)
	if err != nil {
		t.Fatalf("load transcript: %v", err)
	}
	requireContains(t, transcript.NamedText, "Priya Shah:")
}

func TestSettingsScopes(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"settings", "get", "mode"}, env.configPath)
	if err != nil {
		t.Fatalf("settings get: %v", err)
	}
	requireContains(t, out, "group")

	if _, _, err := runCLI(t, []string{"settings", "set", "mode", "individual"}, env.configPath); err != nil {
		t.Fatalf("settings set: %v", err)
	}
	out, _, err = runCLI(t, []string{"settings", "get", "mode"}, env.configPath)
	if err != nil {
		t.Fatalf("settings get: %v", err)
	}
	requireContains(t, out, "individual")

	if _, _, err := runCLI(t, []string{"settings", "set", "channel_mail", "true", "--course", "PHIL101"}, env.configPath); err != nil {
		t.Fatalf("settings set scoped: %v", err)
	}
	out, _, err = runCLI(t, []string{"settings", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("settings list: %v", err)
	}
	requireContains(t, out, "channel_mail")
	requireContains(t, out, "PHIL101")
}

func TestTemplateOverride(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"template", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("template list: %v", err)
	}
	requireContains(t, out, "group_feedback")
	requireContains(t, out, "built-in")

	ctx := context.Background()
	if err := env.catalog.SetTemplate(ctx, "group_feedback", "Custom body {{transcript}}"); err != nil {
		t.Fatalf("set template: %v", err)
	}
	out, _, err = runCLI(t, []string{"template", "show", "group_feedback"}, env.configPath)
	if err != nil {
		t.Fatalf("template show: %v", err)
	}
	requireContains(t, out, "Custom body")

	out, _, err = runCLI(t, []string{"template", "reset", "group_feedback"}, env.configPath)
	if err != nil {
		t.Fatalf("template reset: %v", err)
	}
	requireContains(t, out, "reset to built-in")
}

func TestRosterAddAndList(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"roster", "add", "PHIL101", "B", "Priya Shah", "--contact", "priya@example.edu"}, env.configPath)
	if err != nil {
		t.Fatalf("roster add: %v", err)
	}
	requireContains(t, out, "Saved Priya Shah")

	out, _, err = runCLI(t, []string{"roster", "list", "--course", "PHIL101"}, env.configPath)
	if err != nil {
		t.Fatalf("roster list: %v", err)
	}
	requireContains(t, out, "priya@example.edu")
}
