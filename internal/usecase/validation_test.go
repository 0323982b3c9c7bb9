package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLeadCandidateRequiresCoreFields(t *testing.T) {
	errs := ValidateLeadCandidate(IngestLeadInput{})

	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["subject"])
	assert.True(t, fields["mobile_no"], "one of mobile or email must be present")
}

func TestValidateLeadCandidateAcceptsEmailOnly(t *testing.T) {
	errs := ValidateLeadCandidate(IngestLeadInput{
		Name:    "Email Only",
		Subject: "s",
		Email:   "lead@example.com",
	})
	assert.Empty(t, errs)
}

func TestValidateLeadCandidateMobileLength(t *testing.T) {
	errs := ValidateLeadCandidate(IngestLeadInput{
		Name:     "Short Mobile",
		Subject:  "s",
		MobileNo: "12345",
	})
	assert.Len(t, errs, 1)
	assert.Equal(t, "mobile_no", errs[0].Field)

	errs = ValidateLeadCandidate(IngestLeadInput{
		Name:     "Formatted Mobile",
		Subject:  "s",
		MobileNo: "+91 98765-43210",
	})
	assert.Empty(t, errs, "punctuation is stripped before the length check")
}

func TestValidateLeadCandidateBadEmail(t *testing.T) {
	errs := ValidateLeadCandidate(IngestLeadInput{
		Name:     "Bad Email",
		Subject:  "s",
		MobileNo: "9876543210",
		Email:    "not-an-address",
	})
	assert.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Field)
}

func TestIsUsableEmail(t *testing.T) {
	assert.True(t, isUsableEmail("real@example.com"))
	assert.False(t, isUsableEmail(""))
	assert.False(t, isUsableEmail(PlaceholderEmail))
	assert.False(t, isUsableEmail("no-at-sign"))
}
