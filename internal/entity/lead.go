package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Lead status
const (
	StatusYetToDecide = "yet_to_decide"
	StatusRelevant    = "relevant"
	StatusNotRelevant = "not_relevant"
)

// Heat (coarse commercial priority)
const (
	HeatHot     = "hot"
	HeatCold    = "cold"
	HeatMatured = "matured"
)

var (
	ErrLeadNotFound  = errors.New("lead not found")
	ErrDuplicateLead = errors.New("lead with same mobile or email already exists")
)

type Lead struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Message string `json:"message"`

	MobileNo string `json:"mobile_no"`
	Email    string `json:"email"`

	AltMobileNo string `json:"alt_mobile_no,omitempty"`
	AltEmail    string `json:"alt_email,omitempty"`
	State       string `json:"state,omitempty"`
	District    string `json:"district,omitempty"`
	Station     string `json:"station,omitempty"`
	Pincode     string `json:"pincode,omitempty"`
	AgencyName  string `json:"agency_name,omitempty"`
	Source      string `json:"source,omitempty"`

	AssignedTo   string     `json:"assigned_to,omitempty"`
	Status       string     `json:"status"`
	Heat         string     `json:"heat,omitempty"`
	NextFollowup *time.Time `json:"next_followup,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Factory
func NewLead(name, subject, message, mobileNo, email string) (*Lead, error) {
	lead := &Lead{
		ID:        uuid.New().String(),
		Name:      name,
		Subject:   subject,
		Message:   message,
		MobileNo:  mobileNo,
		Email:     email,
		Status:    StatusYetToDecide,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

// Validate: dedup identity is (mobile, email); at least one must be present.
func (l *Lead) Validate() error {
	if l.MobileNo == "" && l.Email == "" {
		return errors.New("lead requires a mobile number or an email")
	}
	return nil
}

func (l *Lead) IsAssigned() bool {
	return l.AssignedTo != ""
}

// FillableFields is the ordered list of fields a merge may fill when the
// surviving record has them empty. assigned_to, status and next_followup
// have their own rules and stay out of this list.
var FillableFields = []string{
	"name",
	"subject",
	"message",
	"alt_mobile_no",
	"alt_email",
	"state",
	"district",
	"source",
	"station",
	"pincode",
	"agency_name",
}

// FieldValue returns the current value of a fillable field by column name.
func (l *Lead) FieldValue(field string) string {
	switch field {
	case "name":
		return l.Name
	case "subject":
		return l.Subject
	case "message":
		return l.Message
	case "alt_mobile_no":
		return l.AltMobileNo
	case "alt_email":
		return l.AltEmail
	case "state":
		return l.State
	case "district":
		return l.District
	case "source":
		return l.Source
	case "station":
		return l.Station
	case "pincode":
		return l.Pincode
	case "agency_name":
		return l.AgencyName
	}
	return ""
}

// SetFieldValue applies a value in memory. The sweep uses it to accumulate
// loser fields in order before flushing a single patch.
func (l *Lead) SetFieldValue(field, value string) {
	switch field {
	case "name":
		l.Name = value
	case "subject":
		l.Subject = value
	case "message":
		l.Message = value
	case "alt_mobile_no":
		l.AltMobileNo = value
	case "alt_email":
		l.AltEmail = value
	case "state":
		l.State = value
	case "district":
		l.District = value
	case "source":
		l.Source = value
	case "station":
		l.Station = value
	case "pincode":
		l.Pincode = value
	case "agency_name":
		l.AgencyName = value
	}
}
