package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// ============================================================================
// CLINICAL RECORD — Engine input model
// ============================================================================
// Records arrive from the persistence collaborator (store package) or from a
// JSON export. The engine treats them as read-only: every aggregate is freshly
// allocated and two calls with the same input produce the same output.
// ============================================================================

// ClinicalRecord is a single logged consultation.
//
// Most fields are optional. An empty string means the field was never filled
// in, and a nil pointer means the same for dates, numbers, and booleans.
// Categorical fields carry free vocabulary — the engine never assumes a
// closed set of values.
type ClinicalRecord struct {
	ID   string     `json:"id" bson:"_id,omitempty"`
	Date *time.Time `json:"date,omitempty" bson:"date,omitempty"`

	// Age statistics only count records where both Age and AgeUnit are set.
	Age     *float64 `json:"age,omitempty" bson:"age,omitempty"`
	AgeUnit AgeUnit  `json:"ageUnit,omitempty" bson:"ageUnit,omitempty"`

	Sex          string `json:"sex,omitempty" bson:"sex,omitempty"`
	Type         string `json:"type,omitempty" bson:"type,omitempty"`
	Location     string `json:"location,omitempty" bson:"location,omitempty"`
	Autonomy     string `json:"autonomy,omitempty" bson:"autonomy,omitempty"`
	SmokerStatus string `json:"smokerStatus,omitempty" bson:"smokerStatus,omitempty"`

	Presential      *bool `json:"presential,omitempty" bson:"presential,omitempty"`
	VaccinationPlan *bool `json:"vaccinationPlan,omitempty" bson:"vaccinationPlan,omitempty"`
	Alcohol         *bool `json:"alcohol,omitempty" bson:"alcohol,omitempty"`
	Drugs           *bool `json:"drugs,omitempty" bson:"drugs,omitempty"`

	FamilyType            string `json:"familyType,omitempty" bson:"familyType,omitempty"`
	SchoolLevel           string `json:"schoolLevel,omitempty" bson:"schoolLevel,omitempty"`
	ProfessionalSituation string `json:"professionalSituation,omitempty" bson:"professionalSituation,omitempty"`

	// ProgramYear is the residency year the trainee was in when the
	// consultation was logged. Drives the year 2/3 report split.
	ProgramYear int `json:"programYear,omitempty" bson:"programYear,omitempty"`

	Details Details `json:"details,omitempty" bson:"details,omitempty"`
}

// Location values used by the report pipelines.
const (
	LocationUnit          = "unit"
	LocationUrgentCare    = "urgent-care"
	LocationComplementary = "complementary"
)

// AutonomyFull marks consultations carried out without supervision.
// The year 4 report counts only these.
const AutonomyFull = "full"

// ============================================================================
// DETAILS — Typed view of the per-record detail bag
// ============================================================================
// Legacy exports stored details as a loose key→value map where the same key
// can hold a string, an array, or a boolean depending on the era of the form
// that wrote it. Each known key gets a typed field here; anything else lands
// in Unknown instead of being dropped.
// ============================================================================

// Details holds the nested per-consultation detail fields.
type Details struct {
	OwnList          *bool        `json:"ownList,omitempty" bson:"ownList,omitempty"`
	Contraceptive    StringOrBool `json:"contraceptive,omitempty" bson:"contraceptive,omitempty"`
	NewContraceptive StringOrBool `json:"newContraceptive,omitempty" bson:"newContraceptive,omitempty"`
	Diagnosis        CodeList     `json:"diagnosis,omitempty" bson:"diagnosis,omitempty"`
	Problems         CodeList     `json:"problems,omitempty" bson:"problems,omitempty"`
	NewDiagnosis     CodeList     `json:"newDiagnosis,omitempty" bson:"newDiagnosis,omitempty"`
	Referral         []string     `json:"referral,omitempty" bson:"referral,omitempty"`
	ReferralMotive   CodeList     `json:"referralMotive,omitempty" bson:"referralMotive,omitempty"`
	Internship       string       `json:"internship,omitempty" bson:"internship,omitempty"`

	// Unknown catches detail keys no current form writes. Kept so that a
	// round-trip through the store never loses data.
	Unknown map[string]interface{} `json:"-" bson:",inline"`
}

// detailsAlias avoids recursing into UnmarshalJSON.
type detailsAlias Details

// UnmarshalJSON decodes the detail bag, routing known keys to their typed
// fields and everything else into Unknown.
func (d *Details) UnmarshalJSON(data []byte) error {
	var alias detailsAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, known := range detailKeys {
		delete(raw, known)
	}
	if len(raw) > 0 {
		alias.Unknown = make(map[string]interface{}, len(raw))
		for k, v := range raw {
			var val interface{}
			if err := json.Unmarshal(v, &val); err != nil {
				return fmt.Errorf("detail key %q: %w", k, err)
			}
			alias.Unknown[k] = val
		}
	}

	*d = Details(alias)
	return nil
}

var detailKeys = []string{
	"ownList", "contraceptive", "newContraceptive",
	"diagnosis", "problems", "newDiagnosis",
	"referral", "referralMotive", "internship",
}

// ============================================================================
// CODE LIST — array or joined-string clinical code field
// ============================================================================

// CodeList is a list of ICPC-style clinical codes. Older records store these
// as a single comma- or semicolon-joined string, newer ones as an array;
// both decode to the same trimmed list with blanks removed.
type CodeList []string

// UnmarshalJSON accepts a string or an array of strings.
func (c *CodeList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*c = nil
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = SplitCodes(s)
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*c = trimCodes(items)
	return nil
}

// UnmarshalBSONValue accepts a BSON string or array of strings.
func (c *CodeList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeNull:
		*c = nil
	case bson.TypeString:
		*c = SplitCodes(rv.StringValue())
	case bson.TypeArray:
		var items []string
		if err := rv.Unmarshal(&items); err != nil {
			return err
		}
		*c = trimCodes(items)
	default:
		return fmt.Errorf("code list: unsupported BSON type %s", t)
	}
	return nil
}

// SplitCodes splits a joined code string on commas and semicolons, trimming
// each element and dropping blanks.
func SplitCodes(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})
	return trimCodes(parts)
}

func trimCodes(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ============================================================================
// STRING OR BOOL — ambiguous legacy field value
// ============================================================================

// StringOrBool holds a detail value that legacy forms stored either as free
// text or as a checkbox boolean. IsSet distinguishes "absent" from a stored
// empty string or false.
type StringOrBool struct {
	Str    string
	Bool   bool
	IsBool bool
	IsSet  bool
}

// UnmarshalJSON accepts a string, a boolean, or null.
func (v *StringOrBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*v = StringOrBool{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringOrBool{Str: s, IsSet: true}
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("expected string or bool: %w", err)
	}
	*v = StringOrBool{Bool: b, IsBool: true, IsSet: true}
	return nil
}

// MarshalJSON emits the value in the shape it arrived in.
func (v StringOrBool) MarshalJSON() ([]byte, error) {
	if !v.IsSet {
		return []byte("null"), nil
	}
	if v.IsBool {
		return json.Marshal(v.Bool)
	}
	return json.Marshal(v.Str)
}

// UnmarshalBSONValue accepts a BSON string, boolean, or null.
func (v *StringOrBool) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeNull:
		*v = StringOrBool{}
	case bson.TypeString:
		*v = StringOrBool{Str: rv.StringValue(), IsSet: true}
	case bson.TypeBoolean:
		*v = StringOrBool{Bool: rv.Boolean(), IsBool: true, IsSet: true}
	default:
		return fmt.Errorf("string-or-bool: unsupported BSON type %s", t)
	}
	return nil
}
