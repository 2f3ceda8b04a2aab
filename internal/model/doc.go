package model

// Package model defines the domain data structures shared across the service:
// download tasks, their status enum and legal transitions, platform tags and
// playlist listings. Structures carry JSON tags so handlers can serve them
// directly.
