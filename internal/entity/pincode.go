package entity

// PincodeMapping resolves an indian postal pincode to its state/district.
// Consulted by bulk import and the manual edit path only.
type PincodeMapping struct {
	Pincode  string `json:"pincode"`
	State    string `json:"state"`
	District string `json:"district"`
}
