package student

import "github.com/scholarhub/backend/core"

var (
	statusTag  = "studentstatus"
	statusText = "status must be one of Active, Inactive"
)

// register custom validators
func init() {
	_ = core.Validate.RegisterValidation(statusTag, core.OneOfValidation(Statuses...))
	core.RegisterCustomTranslation(statusTag, statusText)
}
