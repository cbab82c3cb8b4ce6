package records

import (
	"fmt"

	"github.com/iudanet/garageboard/internal/client/api"
	"github.com/iudanet/garageboard/internal/models"
)

// Resource describes one editable record type of the admin API.
type Resource[T any] struct {
	Labels map[string]string // подписи полей в диалоге конфликта
	Title  func(T) string    // заголовок диалога конфликта
	Name   string            // сегмент пути /admin/{name}/{id}
}

// CustomerRecords addresses /admin/customers.
var CustomerRecords = Resource[models.Customer]{
	Name: api.ResourceCustomers,
	Labels: map[string]string{
		"name":  "Name",
		"phone": "Phone",
		"email": "Email",
		"notes": "Notes",
	},
	Title: func(c models.Customer) string {
		return fmt.Sprintf("Customer %s was changed by someone else", c.Name)
	},
}

// VehicleRecords addresses /admin/vehicles.
var VehicleRecords = Resource[models.Vehicle]{
	Name: api.ResourceVehicles,
	Labels: map[string]string{
		"make":          "Make",
		"model":         "Model",
		"year":          "Year",
		"vin":           "VIN",
		"license_plate": "License plate",
		"mileage":       "Mileage",
	},
	Title: func(v models.Vehicle) string {
		return fmt.Sprintf("Vehicle %s was changed by someone else", v.Label())
	},
}

func (r Resource[T]) title(v T) string {
	if r.Title == nil {
		return "Record was changed by someone else"
	}
	return r.Title(v)
}
