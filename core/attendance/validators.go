package attendance

import "github.com/scholarhub/backend/core"

var (
	statusTag  = "attendancestatus"
	statusText = "status must be one of Present, Absent, Tardy"
)

// register custom validators
func init() {
	_ = core.Validate.RegisterValidation(statusTag, core.OneOfValidation(Statuses...))
	core.RegisterCustomTranslation(statusTag, statusText)
}
