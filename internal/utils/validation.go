package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Validate performs validation on a struct.
func Validate(s interface{}) error {
	validate := validator.New()
	return validate.Struct(s)
}

// ValidationDetails converts validation errors into a field-to-message map
// for the error envelope.
func ValidationDetails(err error) map[string]string {
	details := map[string]string{}
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range errs {
			details[e.Field()] = "failed on the '" + e.Tag() + "' rule"
		}
		return details
	}
	details["body"] = err.Error()
	return details
}

// BindAndValidate binds the request body to a struct and validates it.
// If validation fails, it sends a BadRequest response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		ErrorWithDetails(c, http.StatusBadRequest, "Invalid request payload", ValidationDetails(err))
		return false
	}
	if err := Validate(obj); err != nil {
		ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ValidationDetails(err))
		return false
	}
	return true
}
