package validator

import (
	"fmt"

	playground "github.com/go-playground/validator/v10"

	"github.com/turnolab/scheduler-api/internal/model"
)

// Validator wraps go-playground/validator with the product's custom rules.
type Validator struct {
	v *playground.Validate
}

func New() (*Validator, error) {
	v := playground.New(playground.WithRequiredStructEnabled())

	err := v.RegisterValidation("slot_duration", func(fl playground.FieldLevel) bool {
		return model.ValidDuration(int(fl.Field().Int()))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register slot_duration rule: %w", err)
	}

	err = v.RegisterValidation("appointment_type", func(fl playground.FieldLevel) bool {
		return model.ValidAppointmentType(model.AppointmentType(fl.Field().String()))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register appointment_type rule: %w", err)
	}

	return &Validator{v: v}, nil
}

func (v *Validator) Validate(obj interface{}) error {
	if err := v.v.Struct(obj); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
