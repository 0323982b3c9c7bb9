package leadfeed

// Enquiry is one candidate extracted from an external portal payload.
// Field-name chaos in those payloads is absorbed by the alias table in
// mapper.go; by the time an Enquiry exists the names are ours.
type Enquiry struct {
	Name       string
	Subject    string
	Message    string
	MobileNo   string
	Email      string
	State      string
	District   string
	Station    string
	Pincode    string
	AgencyName string
	Source     string
}
