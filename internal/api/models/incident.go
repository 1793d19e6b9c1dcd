package models

// Incident is the wire representation of a reported road incident.
// Latitude and longitude are decimal strings to preserve the precision
// the client submitted.
type Incident struct {
	ID         int64      `json:"id"`
	Type       string     `json:"type"`
	Latitude   string     `json:"latitude"`
	Longitude  string     `json:"longitude"`
	Comment    *string    `json:"comment"`
	ReportedBy int64      `json:"reportedBy"`
	Active     bool       `json:"active"`
	Confirmed  int        `json:"confirmed"`
	Refuted    int        `json:"refuted"`
	CreatedAt  Timestamp  `json:"createdAt"`
	UpdatedAt  *Timestamp `json:"updatedAt"`
}

// IncidentCreateRequest is the body of POST /api/incidents.
type IncidentCreateRequest struct {
	Type      string  `json:"type"`
	Latitude  string  `json:"latitude"`
	Longitude string  `json:"longitude"`
	Comment   *string `json:"comment"`
}

// IncidentUpdateRequest is the body of the admin PUT /api/incidents/{id}.
type IncidentUpdateRequest struct {
	Type    *string `json:"type"`
	Comment *string `json:"comment"`
	Active  *bool   `json:"active"`
}

// IncidentStatusRequest is the body of PUT /api/incidents/{id}/status.
type IncidentStatusRequest struct {
	Active *bool `json:"active"`
}

// VerificationRequest is the body of POST /api/incidents/{id}/verify.
// IsConfirmation is accepted as an alias for isConfirmed for older clients.
type VerificationRequest struct {
	IsConfirmed    *bool `json:"isConfirmed"`
	IsConfirmation *bool `json:"isConfirmation"`
}

// Confirmed resolves the request to a single confirm/deny flag.
func (r *VerificationRequest) Confirmed() (bool, bool) {
	if r.IsConfirmed != nil {
		return *r.IsConfirmed, true
	}
	if r.IsConfirmation != nil {
		return *r.IsConfirmation, true
	}
	return false, false
}

// Verification is the wire representation of a confirm/deny reaction.
type Verification struct {
	ID          int64     `json:"id"`
	IncidentID  int64     `json:"incidentId"`
	UserID      int64     `json:"userId"`
	IsConfirmed bool      `json:"isConfirmed"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// IncidentStats summarises reporting activity for the statistics page.
type IncidentStats struct {
	Total         int            `json:"total"`
	Active        int            `json:"active"`
	Resolved      int            `json:"resolved"`
	ByType        map[string]int `json:"byType"`
	Verifications int            `json:"verifications"`
}

// UserStats summarises one user's contribution activity.
type UserStats struct {
	TotalReported int            `json:"totalReported"`
	ByType        map[string]int `json:"byType"`
	TotalRoutes   int            `json:"totalRoutes"`
}
