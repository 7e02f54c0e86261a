package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrPlannerUnavailable is returned when plan regeneration is requested
	// but no planner is wired or the planner produced nothing.
	ErrPlannerUnavailable = errors.New("plan generator unavailable")
)
