// Package types provides type definitions for structured data used throughout the contact-cleaner system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Column names of the contact CSV, in the fixed order expected at ingestion
// and produced at output.
const (
	ColumnName   = "name"
	ColumnGender = "gender"
	ColumnTitle  = "title"
	ColumnEmail  = "email"
	ColumnMobile = "mobile"
	ColumnWechat = "wechat"
	ColumnRemark = "remark"
)

// Columns returns the expected CSV header in order.
func Columns() []string {
	return []string{ColumnName, ColumnGender, ColumnTitle, ColumnEmail, ColumnMobile, ColumnWechat, ColumnRemark}
}

// Row represents one contact record. RowNumber is assigned 1-based at
// ingestion and identifies the row for the lifetime of a run; it is carried
// in JSON under the "_row_number" alias on every row-like object.
type Row struct {
	RowNumber int    `json:"_row_number"`
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	Title     string `json:"title"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	Wechat    string `json:"wechat"`
	Remark    string `json:"remark"`
}

// Values returns the row's fields in column order, without the row number.
func (r *Row) Values() []string {
	return []string{r.Name, r.Gender, r.Title, r.Email, r.Mobile, r.Wechat, r.Remark}
}

// Field returns the value of the named column. The second return is false
// for an unknown column name.
func (r *Row) Field(column string) (string, bool) {
	switch column {
	case ColumnName:
		return r.Name, true
	case ColumnGender:
		return r.Gender, true
	case ColumnTitle:
		return r.Title, true
	case ColumnEmail:
		return r.Email, true
	case ColumnMobile:
		return r.Mobile, true
	case ColumnWechat:
		return r.Wechat, true
	case ColumnRemark:
		return r.Remark, true
	}
	return "", false
}

// SetField sets the value of the named column. Returns false for an unknown
// column name; RowNumber cannot be set through this method.
func (r *Row) SetField(column, value string) bool {
	switch column {
	case ColumnName:
		r.Name = value
	case ColumnGender:
		r.Gender = value
	case ColumnTitle:
		r.Title = value
	case ColumnEmail:
		r.Email = value
	case ColumnMobile:
		r.Mobile = value
	case ColumnWechat:
		r.Wechat = value
	case ColumnRemark:
		r.Remark = value
	default:
		return false
	}
	return true
}
