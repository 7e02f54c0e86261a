package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrAthleteNotFound = errors.New("athlete not found")
	ErrPlanNotFound    = errors.New("plan not found")
)
