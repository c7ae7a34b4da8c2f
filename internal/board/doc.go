// Package board builds kanban-style projections of stage cards: one lane per
// workflow, one column per card status. Building a board never mutates the
// underlying cards.
package board
