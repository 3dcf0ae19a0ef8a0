package hr

import (
	"fmt"
	"strings"
	"time"
)

type EquipmentState string

const (
	EquipmentAvailable EquipmentState = "available"
	EquipmentAssigned  EquipmentState = "assigned"
	EquipmentReturned  EquipmentState = "returned"
	EquipmentDamaged   EquipmentState = "damaged"
	EquipmentLost      EquipmentState = "lost"
)

type EquipmentType string

const (
	EquipmentComputer EquipmentType = "computer"
	EquipmentPhone    EquipmentType = "phone"
	EquipmentVehicle  EquipmentType = "vehicle"
	EquipmentTools    EquipmentType = "tools"
	EquipmentOther    EquipmentType = "other"
)

type Equipment struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	EmployeeID     string         `json:"employee_id,omitempty"`
	Type           EquipmentType  `json:"type"`
	SerialNumber   string         `json:"serial_number,omitempty"`
	AssignmentDate *time.Time     `json:"assignment_date,omitempty"`
	ReturnDate     *time.Time     `json:"return_date,omitempty"`
	State          EquipmentState `json:"state"`
	Value          float64        `json:"value,omitempty"`
	Notes          string         `json:"notes,omitempty"`
}

func (e *Equipment) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return invalid("name", "equipment name is required")
	}
	if err := oneOf("type", e.Type, EquipmentComputer, EquipmentPhone, EquipmentVehicle, EquipmentTools, EquipmentOther); err != nil {
		return err
	}
	return oneOf("state", e.State, EquipmentAvailable, EquipmentAssigned, EquipmentReturned, EquipmentDamaged, EquipmentLost)
}

// Assign hands the equipment to employeeID.
func (e *Equipment) Assign(employeeID string, now time.Time) error {
	if employeeID == "" {
		employeeID = e.EmployeeID
	}
	if employeeID == "" {
		return invalid("employee_id", "select an employee before assigning")
	}
	e.EmployeeID = employeeID
	e.State = EquipmentAssigned
	e.AssignmentDate = datePtr(now)
	return nil
}

func (e *Equipment) Return(now time.Time) {
	e.State = EquipmentReturned
	e.ReturnDate = datePtr(now)
}

// Report marks the equipment damaged or lost.
func (e *Equipment) Report(state EquipmentState) error {
	if state != EquipmentDamaged && state != EquipmentLost {
		return fmt.Errorf("equipment can only be reported damaged or lost, got %q", state)
	}
	e.State = state
	return nil
}
