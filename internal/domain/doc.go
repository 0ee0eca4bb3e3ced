// Package domain contains the core business entities of the vocabulary
// service: learners, words, per-learner mastery records, readable content
// and the video catalog. Entities validate themselves; persistence and
// transport concerns live elsewhere.
package domain
