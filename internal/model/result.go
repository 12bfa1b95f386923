package model

// Result is one scraped venue record. Every field is kept as the display
// string the backend produced; rating and reviews may use a comma as the
// decimal separator.
type Result struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Rating  string  `json:"rating"`
	Reviews string  `json:"reviews"`
	Type    string  `json:"type"`
	Phone   string  `json:"phone"`
	Website *string `json:"website"`
	Emails  string  `json:"emails"`
}

type Field string

const (
	FieldName    Field = "name"
	FieldAddress Field = "address"
	FieldRating  Field = "rating"
	FieldReviews Field = "reviews"
	FieldType    Field = "type"
	FieldPhone   Field = "phone"
	FieldWebsite Field = "website"
	FieldEmails  Field = "emails"
)

// Fields lists every result field in column order.
var Fields = []Field{
	FieldName, FieldAddress, FieldRating, FieldReviews,
	FieldType, FieldPhone, FieldWebsite, FieldEmails,
}

func (f Field) Title() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldAddress:
		return "Address"
	case FieldRating:
		return "Rating"
	case FieldReviews:
		return "Reviews"
	case FieldType:
		return "Type"
	case FieldPhone:
		return "Phone"
	case FieldWebsite:
		return "Website"
	case FieldEmails:
		return "Emails"
	}
	return string(f)
}

// Numeric reports whether the field holds a number encoded as text.
func (f Field) Numeric() bool {
	return f == FieldRating || f == FieldReviews
}

// Get returns the string form of field f. A nil website reads as "".
func (r Result) Get(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldAddress:
		return r.Address
	case FieldRating:
		return r.Rating
	case FieldReviews:
		return r.Reviews
	case FieldType:
		return r.Type
	case FieldPhone:
		return r.Phone
	case FieldWebsite:
		return r.WebsiteURL()
	case FieldEmails:
		return r.Emails
	}
	return ""
}

func (r Result) WebsiteURL() string {
	if r.Website == nil {
		return ""
	}
	return *r.Website
}
