// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("hex_color", validateHexColor)
		_ = v.RegisterValidation("time_period", validateTimePeriod)
		_ = v.RegisterValidation("chart_type", validateChartType)
	}
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateTimePeriod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "day", "week", "month", "year":
		return true
	}
	return false
}

func validateChartType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pie", "bars":
		return true
	}
	return false
}
