// Package service contains the application use cases. It coordinates domain
// logic, the stores defined in internal/store and the mastered-words cache.
//
// Services:
//
//   - LearnerService: registration with an optional placement quiz, and login.
//   - MasteryService: quiz answers, level overrides and the cached
//     mastered-words projection. Every committed write invalidates the
//     learner's cache entry.
//   - ContentService: corpus ingestion with readability scoring, known-word
//     management and content recommendation by level or vocabulary coverage.
//   - VideoService: video import with transcript tokenization, transcript
//     retrieval, video recommendation and per-video comprehension.
//
// Services receive their dependencies through constructors and run
// multi-store writes through a store.TxRunner. Expected conditions are
// returned as sentinel errors (ErrNoContent, store.ErrLearnerNotFound, ...);
// unexpected failures are wrapped in a ServiceError.
package service
