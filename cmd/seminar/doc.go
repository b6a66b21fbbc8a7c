// Command seminar is the reviewer-facing CLI for the discussion review
// pipeline: inspecting discussions, confirming speakers, entering grades,
// generating feedback, and sending approved results.
package main
