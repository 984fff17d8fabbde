package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type locationRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// preferencesRequest is the profile/preference snapshot supplied on join.
// Gender and seeking are the only hard filters; age and distance bounds
// relax automatically with queue wait.
type preferencesRequest struct {
	Gender        string          `json:"gender"          validate:"required,oneof=male female nonbinary"`
	Age           int             `json:"age"             validate:"required,gte=18,lte=120"`
	Location      locationRequest `json:"location"`
	Seeking       string          `json:"seeking"         validate:"required,oneof=male female nonbinary any"`
	AgeMin        int             `json:"age_min"         validate:"required,gte=18"`
	AgeMax        int             `json:"age_max"         validate:"required,gtefield=AgeMin"`
	MaxDistanceKm float64         `json:"max_distance_km" validate:"gte=0"`
}

type joinRequest struct {
	Preferences preferencesRequest `json:"preferences" validate:"required"`
}

type voteRequest struct {
	Vote string `json:"vote" validate:"required,oneof=yes pass"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to
// internal service changes.

type joinResponse struct {
	Status  string `json:"status"`
	MatchID string `json:"match_id,omitempty"`
}

type statusResponse struct {
	State               string     `json:"state"`
	MatchID             string     `json:"match_id,omitempty"`
	PartnerID           string     `json:"partner_id,omitempty"`
	FairnessScore       float64    `json:"fairness_score,omitempty"`
	PreferenceStage     int        `json:"preference_stage,omitempty"`
	VoteWindowExpiresAt *time.Time `json:"vote_window_expires_at,omitempty"`
}

type voteResponse struct {
	Outcome string `json:"outcome"`
}

type okResponse struct {
	Status string `json:"status"`
}
