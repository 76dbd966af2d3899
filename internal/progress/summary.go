package progress

import (
	"time"

	"github.com/shopspring/decimal"

	"procurement/models"
)

// Snapshot всё, что загружается по одному договору.
type Snapshot struct {
	Contract  models.Contract
	Agenda    []models.AgendaItem
	Vendors   []models.ContractVendor
	StepDates []models.VendorStepDate
}

// Summary производные значения для шапки договора и строки списка.
type Summary struct {
	DisplayStatus   DisplayStatus    `json:"displayStatus"`
	CurrentStep     string           `json:"currentStep"`
	AppointedVendor string           `json:"appointedVendor,omitempty"`
	LowestBidder    string           `json:"lowestBidder,omitempty"`
	LowestPrice     *decimal.Decimal `json:"lowestPrice,omitempty"`
	CompletedSteps  int              `json:"completedSteps"`
	TotalSteps      int              `json:"totalSteps"`
}

// Summarize считается заново на каждый запрос.
func Summarize(s Snapshot, now time.Time) Summary {
	sum := Summary{
		DisplayStatus: ResolveDisplayStatus(s.Contract, s.Agenda, s.Vendors, s.StepDates, now),
		CurrentStep:   ResolveCurrentStep(s.Agenda, s.Vendors, s.StepDates),
		TotalSteps:    len(s.Agenda),
	}
	for _, it := range s.Agenda {
		if NormalizeStepStatus(it.Status) == models.StepCompleted {
			sum.CompletedSteps++
		}
	}
	if v, ok := AppointedVendor(s.Vendors); ok {
		sum.AppointedVendor = v.VendorName
	}
	if v, price, ok := LowestBidder(s.Vendors); ok {
		sum.LowestBidder = v.VendorName
		sum.LowestPrice = &price
	}
	return sum
}
