package leadfeed

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// aliasRule: ordered alternate key names for one logical field. The first
// key holding a non-empty value wins; fallback applies when none do.
type aliasRule struct {
	target   string
	keys     []string
	fallback string
}

// placeholderEmail is the "no address" sentinel several portals send. It is
// never stored: as a real address it would become a dedup key and club
// unrelated mobile-only enquiries together (and the unique email index would
// reject a second placeholder row anyway).
const placeholderEmail = "notprovided@gmail.com"

// The enquiry portals this feed has seen over the years. Order matters.
var aliasRules = []aliasRule{
	{target: "name", keys: []string{"name", "Name", "SENDERNAME", "sender_name", "contact_person", "SENDER_NAME"}, fallback: "Unknown"},
	{target: "subject", keys: []string{"subject", "Subject", "SUBJECT", "QUERY_SUBJECT", "ENQ_TYPE"}, fallback: "Web Enquiry"},
	{target: "message", keys: []string{"message", "Message", "QUERY_MESSAGE", "ENQ_MESSAGE", "requirement", "query"}},
	{target: "mobile_no", keys: []string{"mobile", "Mobile", "MOBILE", "mobile_no", "SENDERMOBILE", "phone", "MOB"}},
	{target: "email", keys: []string{"email", "Email", "EMAIL", "email_id", "SENDEREMAIL"}},
	{target: "state", keys: []string{"state", "State", "SENDERSTATE"}},
	{target: "district", keys: []string{"district", "District", "city", "City", "SENDERCITY"}},
	{target: "station", keys: []string{"station", "Station", "railway_station", "nearest_station"}},
	{target: "pincode", keys: []string{"pincode", "Pincode", "PINCODE", "pin", "zip"}},
	{target: "agency_name", keys: []string{"company", "Company", "COMPANY_NAME", "firm", "GLUSR_USR_COMPANYNAME"}},
	{target: "source", keys: []string{"source", "Source", "portal"}},
}

// MapEnquiry resolves one raw payload object through the alias table.
// ok is false when the payload yields neither a mobile nor a real email —
// such candidates never reach the merge engine.
func MapEnquiry(raw map[string]interface{}) (Enquiry, bool) {
	values := map[string]string{}
	for _, rule := range aliasRules {
		values[rule.target] = firstNonEmpty(raw, rule.keys, rule.fallback)
	}
	if values["email"] == placeholderEmail {
		values["email"] = ""
	}

	enq := Enquiry{
		Name:       values["name"],
		Subject:    values["subject"],
		Message:    values["message"],
		MobileNo:   values["mobile_no"],
		Email:      values["email"],
		State:      values["state"],
		District:   values["district"],
		Station:    values["station"],
		Pincode:    values["pincode"],
		AgencyName: values["agency_name"],
		Source:     values["source"],
	}

	if enq.MobileNo == "" && enq.Email == "" {
		return Enquiry{}, false
	}
	return enq, true
}

func firstNonEmpty(raw map[string]interface{}, keys []string, fallback string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			// Portals love sending numbers for phone/pincode fields.
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return fallback
}

var trailingCommas = regexp.MustCompile(`,\s*([}\]])`)

// DecodeEnquiries parses a feed/webhook body into raw payload objects.
// Accepts a single object or an array, and repairs trailing commas — several
// portals emit hand-built JSON. Each record is decoded independently, so one
// structurally broken element costs only that element: unparsable reports how
// many records stayed undecodable and must be counted as skipped. A body with
// no object syntax at all counts as one unparsable record.
func DecodeEnquiries(body []byte) (raws []map[string]interface{}, unparsable int) {
	objects, dangling := splitObjects(body)

	for _, element := range objects {
		var obj map[string]interface{}
		if err := json.Unmarshal(element, &obj); err == nil {
			raws = append(raws, obj)
			continue
		}
		repaired := trailingCommas.ReplaceAll(element, []byte("$1"))
		obj = nil
		if err := json.Unmarshal(repaired, &obj); err == nil {
			raws = append(raws, obj)
			continue
		}
		unparsable++
	}
	unparsable += dangling

	if len(objects) == 0 && dangling == 0 {
		if s := strings.TrimSpace(string(body)); s != "" && s != "[]" {
			unparsable = 1
		}
	}
	return raws, unparsable
}

// splitObjects scans for balanced top-level {...} groups, ignoring braces
// inside string literals. Array brackets and separators between records are
// irrelevant to the scan, which is what lets a broken sibling record leave
// the rest of the batch decodable. dangling is 1 when the body ends inside an
// unterminated object.
func splitObjects(body []byte) (objects [][]byte, dangling int) {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, b := range body {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					objects = append(objects, body[start:i+1])
					start = -1
				}
			}
		}
	}

	if depth > 0 {
		dangling = 1
	}
	return objects, dangling
}
