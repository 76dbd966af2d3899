// Package progress выводит отображаемое состояние договора из его шагов,
// поставщиков и их дат. Все функции чистые и работают над уже загруженными данными.
package progress

import (
	"strings"

	"procurement/models"
)

// Канонические названия шагов повестки
const (
	StepVendorFindings    = "Vendor Findings"
	StepKYC               = "KYC"
	StepTechnicalEval     = "Technical Evaluation"
	StepClarification     = "Clarification"
	StepPrice             = "Price"
	StepRevisedPrice      = "Revised Price"
	StepAppointedVendor   = "Appointed Vendor"
	StepInternalSignature = "Internal Contract Signature Process"
	StepVendorSignature   = "Vendor Contract Signature Process"
)

// Сентинелы текущего шага
const (
	CurrentStepCompleted = "Contract Completed"
	CurrentStepInitiated = "Initiated"
)

var stepCatalog = []string{
	StepVendorFindings,
	StepKYC,
	StepTechnicalEval,
	StepClarification,
	StepPrice,
	StepRevisedPrice,
	StepAppointedVendor,
	StepInternalSignature,
	StepVendorSignature,
}

var stepIndex = func() map[string]int {
	m := make(map[string]int, len(stepCatalog))
	for i, name := range stepCatalog {
		m[name] = i
	}
	return m
}()

var vendorDependent = map[string]bool{
	StepKYC:           true,
	StepTechnicalEval: true,
	StepClarification: true,
	StepPrice:         true,
	StepRevisedPrice:  true,
}

// StepCatalog возвращает канонический порядок шагов.
func StepCatalog() []string {
	out := make([]string, len(stepCatalog))
	copy(out, stepCatalog)
	return out
}

// StepOrder позиция шага в каталоге; неизвестные имена уходят в конец.
func StepOrder(name string) int {
	if i, ok := stepIndex[name]; ok {
		return i
	}
	return len(stepCatalog)
}

// IsKnownStep проверяет, что имя шага есть в каталоге.
func IsKnownStep(name string) bool {
	_, ok := stepIndex[name]
	return ok
}

// IsVendorDependent: у таких шагов нет собственных дат, они считаются по поставщикам.
func IsVendorDependent(name string) bool {
	return vendorDependent[name]
}

// IsMilestone шаги подписания, от которых зависит готовность к финализации.
func IsMilestone(name string) bool {
	return name == StepInternalSignature || name == StepVendorSignature
}

// DefaultAgenda набор шагов, которым засевается новый договор и каждая поправка.
func DefaultAgenda() []string {
	return []string{
		StepVendorFindings,
		StepKYC,
		StepTechnicalEval,
		StepPrice,
		StepAppointedVendor,
		StepInternalSignature,
		StepVendorSignature,
	}
}

// NormalizeStepStatus приводит статус шага к одному из трёх значений.
// "On Progress" встречается в старых записях как синоним "In Progress".
// Незнакомое значение возвращается без изменений.
func NormalizeStepStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "pending", "":
		return models.StepPending
	case "in progress", "on progress":
		return models.StepInProgress
	case "completed", "complete", "done":
		return models.StepCompleted
	}
	return status
}

// IsValidStepStatus для валидации входящих запросов.
func IsValidStepStatus(status string) bool {
	switch NormalizeStepStatus(status) {
	case models.StepPending, models.StepInProgress, models.StepCompleted:
		return true
	}
	return false
}

// lessByCatalog порядок для сортировки шагов: каталог, затем время создания.
func lessByCatalog(a, b models.AgendaItem) bool {
	oa, ob := StepOrder(a.StepName), StepOrder(b.StepName)
	if oa != ob {
		return oa < ob
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
