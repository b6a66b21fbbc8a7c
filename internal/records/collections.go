package records

import "seminar/internal/store"

// Collection schemas. Column order is canonical; the store materializes each
// table on first access.
var (
	Discussions = store.Collection{
		Name: "discussions",
		Key:  "recording_ref",
		Columns: []string{
			"status",
			"next_step",
			"date",
			"section",
			"course",
			"grade",
			"group_feedback",
			"approved",
			"gradebook_item",
			"gradebook_item_type",
			"error_log",
			"recording_ref",
			"recording_name",
			"created_at",
			"updated_at",
		},
	}

	Transcripts = store.Collection{
		Name: "transcripts",
		Key:  "discussion_id",
		Columns: []string{
			"discussion_id",
			"raw_text",
			"utterances_json",
			"speaker_map_json",
			"named_text",
			"created_at",
			"updated_at",
		},
	}

	SpeakerMappings = store.Collection{
		Name: "speaker_mappings",
		Key:  "label",
		Columns: []string{
			"discussion_id",
			"label",
			"suggested_name",
			"confirmed_name",
			"confirmed",
			"created_at",
			"updated_at",
		},
	}

	Participants = store.Collection{
		Name: "participants",
		Key:  "name",
		Columns: []string{
			"name",
			"contact",
			"section",
			"course",
			"gradebook_user",
			"created_at",
			"updated_at",
		},
	}

	Reports = store.Collection{
		Name: "reports",
		Key:  "discussion_id",
		Columns: []string{
			"discussion_id",
			"participant_id",
			"excerpt",
			"grade",
			"feedback",
			"approved",
			"sent",
			"created_at",
			"updated_at",
		},
	}

	PromptTemplates = store.Collection{
		Name: "prompt_templates",
		Key:  "name",
		Columns: []string{
			"name",
			"body",
			"updated_at",
		},
	}

	Courses = store.Collection{
		Name: "courses",
		Key:  "name",
		Columns: []string{
			"name",
			"gradebook_course",
			"base_url",
			"item_type",
			"created_at",
			"updated_at",
		},
	}

	Settings = store.Collection{
		Name: "settings",
		Key:  "key",
		Columns: []string{
			"scope",
			"scope_id",
			"key",
			"value",
			"updated_at",
		},
	}
)
