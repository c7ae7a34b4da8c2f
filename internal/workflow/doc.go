// Package workflow holds the sample development domain model and its SQLite
// persistence: workflows, stage cards, comments, and attachments, plus the
// card state machine that enforces sequential stage execution.
//
// Cards move pending -> in_progress -> completed, with blocked as a side
// state requiring a reason. Completing a stage activates the next stage's
// card in the same transaction; completing the final stage completes the
// workflow.
package workflow
