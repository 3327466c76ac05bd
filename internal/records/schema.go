// Package records is the generic record-management pipeline: one schema value
// per kind drives filtering, form handling, display and report snapshots.
package records

import (
	"fmt"

	"github.com/dharsanguruparan/coedash/internal/model"
)

// FieldType selects how a field is edited, validated and displayed.
type FieldType int

const (
	Text FieldType = iota
	List
	Number
	Date
	Email
	Phone
	// Year is numeric but displayed without grouping and filtered as text.
	Year
)

func (t FieldType) String() string {
	switch t {
	case List:
		return "list"
	case Number:
		return "number"
	case Date:
		return "date"
	case Email:
		return "email"
	case Phone:
		return "phone"
	case Year:
		return "year"
	default:
		return "text"
	}
}

// Field describes one typed field of a kind.
type Field struct {
	Name     string
	Label    string
	Type     FieldType
	Required bool
	// Filter marks fields offered as text filters in the list view.
	Filter bool
}

// Schema describes a kind.
type Schema struct {
	Kind model.Kind
	// Singular is used in messages, e.g. "Error saving project".
	Singular string
	// SourceType is the value stored on reports built from this kind.
	SourceType string
	Fields     []Field
	// DateField is the field the date-range filter applies to, if any.
	DateField string
}

// Field looks a field up by name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FilterFields returns the fields offered as text filters.
func (s *Schema) FilterFields() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Filter {
			out = append(out, f)
		}
	}
	return out
}

// SchemaFor returns the schema of kind.
func SchemaFor(kind model.Kind) (*Schema, error) {
	s, ok := schemas[kind]
	if !ok {
		return nil, fmt.Errorf("no schema for kind %q", kind)
	}
	return s, nil
}

// SchemaForSourceType maps a report source type back to its schema.
func SchemaForSourceType(sourceType string) (*Schema, error) {
	for _, s := range schemas {
		if s.SourceType == sourceType {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown source type %q", sourceType)
}

func req(name, label string, t FieldType) Field {
	return Field{Name: name, Label: label, Type: t, Required: true}
}

func opt(name, label string, t FieldType) Field {
	return Field{Name: name, Label: label, Type: t}
}

func filterable(f Field) Field {
	f.Filter = true
	return f
}

var schemas = map[model.Kind]*Schema{
	model.KindProjects: {
		Kind:       model.KindProjects,
		Singular:   "project",
		SourceType: "CommercializationProjects",
		DateField:  "dateOfContractSign",
		Fields: []Field{
			filterable(req("projectTitle", "Project Title", Text)),
			filterable(req("supervisor", "Supervisor", Text)),
			req("rndTeam", "R&D Team", List),
			filterable(req("clientCompany", "Client Company", Text)),
			req("dateOfContractSign", "Date of Contract Sign", Date),
			req("dateOfDeploymentAsPerContract", "Date of Deployment as per Contract", Date),
			req("amountInPKRM", "Amount in PKR (M)", Number),
			req("advPaymentPercentage", "Advance Payment (%)", Number),
			req("advPaymentAmount", "Advance Payment Amount", Number),
			req("dateOfReceivingAdvancePayment", "Date of Receiving Advance Payment", Date),
			req("actualDateOfDeployment", "Actual Date of Deployment", Date),
			req("dateOfReceivingCompletePayment", "Date of Receiving Complete Payment", Date),
			opt("remarks", "Remarks", Text),
		},
	},
	model.KindTrainings: {
		Kind:       model.KindTrainings,
		Singular:   "training",
		SourceType: "Trainings",
		DateField:  "date",
		Fields: []Field{
			filterable(req("type", "Type", Text)),
			filterable(req("title", "Title", Text)),
			req("participants", "Participants", Text),
			req("date", "Date", Date),
			opt("agenda", "Agenda", Text),
			opt("followUpActivity", "Follow-up Activity", Text),
			filterable(opt("resourcePerson", "Resource Person", Text)),
			filterable(opt("venue", "Venue", Text)),
			opt("totalRevenue", "Total Revenue", Number),
		},
	},
	model.KindInternships: {
		Kind:       model.KindInternships,
		Singular:   "internship",
		SourceType: "Internships",
		Fields: []Field{
			filterable(req("year", "Year", Year)),
			req("duration", "Duration", Text),
			req("certificateNumber", "Certificate Number", Text),
			filterable(req("applicantName", "Applicant Name", Text)),
			req("officialEmail", "Official Email", Email),
			req("contactNumber", "Contact Number", Phone),
			req("affiliation", "Affiliation", Text),
			filterable(req("centerName", "Center Name", Text)),
			filterable(req("supervisor", "Supervisor", Text)),
			opt("tasksCompleted", "Tasks Completed", Text),
		},
	},
	model.KindPatents: {
		Kind:       model.KindPatents,
		Singular:   "patent",
		SourceType: "Patents",
		DateField:  "dateOfSubmission",
		Fields: []Field{
			filterable(req("title", "Title", Text)),
			filterable(req("pi", "PI", Text)),
			req("team", "Team", List),
			req("dateOfSubmission", "Date of Submission", Date),
			filterable(req("scope", "Scope", Text)),
			opt("directoryNumber", "Directory Number", Text),
			opt("patentNumber", "Patent Number", Text),
			opt("dateOfApproval", "Date of Approval", Date),
		},
	},
	model.KindFundings: {
		Kind:       model.KindFundings,
		Singular:   "funding",
		SourceType: "Fundings",
		DateField:  "dateOfSubmission",
		Fields: []Field{
			filterable(req("projectTitle", "Project Title", Text)),
			filterable(req("pi", "PI", Text)),
			req("researchTeam", "Research Team", Text),
			req("dateOfSubmission", "Date of Submission", Date),
			req("dateOfApproval", "Date of Approval", Date),
			filterable(req("fundingSource", "Funding Source", Text)),
			req("pkr", "PKR", Number),
			req("team", "Team", Text),
			req("status", "Status", Text),
			req("closingDate", "Closing Date", Date),
		},
	},
	model.KindPublications: {
		Kind:       model.KindPublications,
		Singular:   "publication",
		SourceType: "Publications",
		DateField:  "dateOfPublication",
		Fields: []Field{
			filterable(req("author", "Author", Text)),
			req("publicationDetails", "Publication Details", Text),
			filterable(req("typeOfPublication", "Type of Publication", Text)),
			req("lastKnownImpactFactor", "Last Known Impact Factor", Number),
			req("dateOfPublication", "Date of Publication", Date),
			req("hecCategory", "HEC Category", Text),
		},
	},
	model.KindEvents: {
		Kind:       model.KindEvents,
		Singular:   "event",
		SourceType: "Events",
		DateField:  "date",
		Fields: []Field{
			filterable(req("eventName", "Event Name", Text)),
			req("date", "Date", Date),
			filterable(req("location", "Location", Text)),
			filterable(req("organizer", "Organizer", Text)),
			opt("attendees", "Attendees", Number),
		},
	},
}
