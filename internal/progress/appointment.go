package progress

import (
	"strings"

	"procurement/models"
)

// AppointVendor возвращает копию списка, где назначен только первый поставщик
// с именем name. Если имя не найдено, назначение снимается у всех.
func AppointVendor(vendors []models.ContractVendor, name string) []models.ContractVendor {
	name = strings.TrimSpace(name)
	out := make([]models.ContractVendor, len(vendors))
	appointed := false
	for i, v := range vendors {
		v.IsAppointed = false
		if !appointed && name != "" && strings.TrimSpace(v.VendorName) == name {
			v.IsAppointed = true
			appointed = true
		}
		out[i] = v
	}
	return out
}

// AppointedVendor назначенный поставщик, если он есть.
func AppointedVendor(vendors []models.ContractVendor) (models.ContractVendor, bool) {
	for _, v := range vendors {
		if v.IsAppointed {
			return v, true
		}
	}
	return models.ContractVendor{}, false
}

// ClearAppointment снимает флаг со всех поставщиков.
func ClearAppointment(vendors []models.ContractVendor) []models.ContractVendor {
	return AppointVendor(vendors, "")
}
