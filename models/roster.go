package models

import (
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sex is the single enumerated sex value on a roster record. The legacy
// spreadsheet format carried two independent mark columns; both-marked or
// neither-marked rows collapse to SexUnknown.
type Sex string

// Sex values
const (
	SexUnknown Sex = "unknown"
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
)

// ChargeClass is the single enumerated charge classification on a roster
// record, replacing the legacy misdemeanor/felony boolean pair.
type ChargeClass string

// ChargeClass values
const (
	ChargeUnknown     ChargeClass = "unknown"
	ChargeMisdemeanor ChargeClass = "misdemeanor"
	ChargeFelony      ChargeClass = "felony"
)

// CustodyStatus is the derived status badge for a roster record
type CustodyStatus string

// CustodyStatus values
const (
	StatusReleased     CustodyStatus = "Released"
	StatusPendingCourt CustodyStatus = "Pending Court"
	StatusInCustody    CustodyStatus = "In Custody"
)

// InmateRecord holds the structure for the roster collection in mongo and
// is the wire format served to clients. The id is a server-assigned opaque
// string; client-side drafts carry a "new-" prefixed placeholder until the
// create call succeeds.
//
// Timestamps are ISO-8601 strings and empty when unset: a record is active
// iff ReleaseDateTime is empty.
type InmateRecord struct {
	ID               string      `json:"id" bson:"_id"`
	JailLocation     string      `json:"jailLocation" bson:"jailLocation"`
	Cell             string      `json:"cell" bson:"cell"`
	DayNumber        string      `json:"dayNumber" bson:"dayNumber"`
	TotalNumber      string      `json:"totalNumber" bson:"totalNumber"`
	Name             string      `json:"name" bson:"name"`
	DOB              string      `json:"dob" bson:"dob"`
	SSN              string      `json:"ssn" bson:"ssn"`
	Sex              Sex         `json:"sex" bson:"sex"`
	OCANumber        string      `json:"ocaNumber" bson:"ocaNumber"`
	ArrestDateTime   string      `json:"arrestDateTime" bson:"arrestDateTime"`
	ChargeClass      ChargeClass `json:"chargeClass" bson:"chargeClass"`
	Charges          string      `json:"charges" bson:"charges"`
	CourtPacket      string      `json:"courtPacket" bson:"courtPacket"`
	Inst             string      `json:"inst" bson:"inst"`
	CourtCaseTicket  string      `json:"courtCaseTicket" bson:"courtCaseTicket"`
	BondChangeNotice bool        `json:"bondChangeNotice" bson:"bondChangeNotice"`
	Bond             string      `json:"bond" bson:"bond"`
	Waiver           string      `json:"waiver" bson:"waiver"`
	CourtDate        string      `json:"courtDate" bson:"courtDate"`
	ReleaseDateTime  string      `json:"releaseDateTime" bson:"releaseDateTime"`
	HoldersNotes     string      `json:"holdersNotes" bson:"holdersNotes"`
	ChargingDocs     string      `json:"chargingDocs" bson:"chargingDocs"`
	HasPhoto         bool        `json:"hasPhoto" bson:"hasPhoto"`

	CreatedAt primitive.DateTime `json:"createdAt,omitempty" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt,omitempty" bson:"updatedAt"`
}

// DraftIDPrefix marks a client-generated placeholder identifier on a record
// that has not been persisted yet.
const DraftIDPrefix = "new-"

// IsDraft reports whether the record still carries a client placeholder id.
func (r InmateRecord) IsDraft() bool {
	return strings.HasPrefix(r.ID, DraftIDPrefix)
}

// Active reports whether the inmate is still in custody. The
// active/released partition is derived purely from the release timestamp.
func (r InmateRecord) Active() bool {
	return r.ReleaseDateTime == ""
}

// Status derives the custody status badge: released wins, then a set court
// date means pending court, otherwise in custody.
func (r InmateRecord) Status() CustodyStatus {
	if r.ReleaseDateTime != "" {
		return StatusReleased
	}
	if r.CourtDate != "" {
		return StatusPendingCourt
	}
	return StatusInCustody
}

// DaysHeld computes the whole days between arrest and release, rounding
// up. Returns false when either timestamp is missing or unparseable.
func (r InmateRecord) DaysHeld() (int, bool) {
	arrest, ok := ParseWhen(r.ArrestDateTime)
	if !ok {
		return 0, false
	}
	release, ok := ParseWhen(r.ReleaseDateTime)
	if !ok {
		return 0, false
	}
	return int(math.Ceil(release.Sub(arrest).Hours() / 24)), true
}

// Matches reports whether the search term appears, case-insensitively, in
// the record's name, cell, OCA number or charges. An empty term matches.
func (r InmateRecord) Matches(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, field := range []string{r.Name, r.Cell, r.OCANumber, r.Charges} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Normalize coerces the enum fields to known values so legacy or
// free-typed input never stores an undefined state.
func (r *InmateRecord) Normalize() {
	switch r.Sex {
	case SexMale, SexFemale:
	default:
		r.Sex = SexUnknown
	}
	switch r.ChargeClass {
	case ChargeMisdemeanor, ChargeFelony:
	default:
		r.ChargeClass = ChargeUnknown
	}
}

// SexFromMarks maps the legacy spreadsheet mark pair to the enum. Exactly
// one mark yields that sex; anything else is unknown.
func SexFromMarks(male, female bool) Sex {
	switch {
	case male && !female:
		return SexMale
	case female && !male:
		return SexFemale
	default:
		return SexUnknown
	}
}

// ChargeClassFromMarks maps the legacy misdemeanor/felony mark pair to the
// enum under the same exactly-one rule as SexFromMarks.
func ChargeClassFromMarks(misdemeanor, felony bool) ChargeClass {
	switch {
	case misdemeanor && !felony:
		return ChargeMisdemeanor
	case felony && !misdemeanor:
		return ChargeFelony
	default:
		return ChargeUnknown
	}
}

// whenLayouts covers the timestamp shapes seen on the wire: RFC3339 from
// the API, the datetime-local input format from forms, and bare dates.
var whenLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseWhen parses a roster timestamp string in any accepted layout.
func ParseWhen(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range whenLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
