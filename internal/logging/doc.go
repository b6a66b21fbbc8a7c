// Package logging builds the process-wide slog logger and the structured
// attribute helpers shared by every component. Standardized field names keep
// discussion, step, and correlation identifiers queryable across console and
// JSON output.
package logging
