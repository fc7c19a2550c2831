// Package alerts implements the Alert Generator: a pure function over
// every train (not filtered by eligibility) that emits severity-graded
// notices independent of ranking (spec.md §4.4).
package alerts

import (
	"fmt"
	"sort"
	"time"

	"github.com/kochimetro/induction-engine/internal/constraints"
	"github.com/kochimetro/induction-engine/internal/domain"
)

// Generate emits at most one fitness alert, one maintenance alert, one
// availability alert, and (ADDED) one open-work-order alert per train,
// sorted by severity descending and stable within a severity.
func Generate(trains []domain.Train, now time.Time) []domain.Alert {
	var out []domain.Alert
	for _, tr := range trains {
		e := constraints.Evaluate(tr, now)
		out = append(out, fitnessAlerts(e)...)
		if e.MaintenanceDue {
			out = append(out, domain.Alert{
				Type:      domain.AlertWarning,
				Message:   fmt.Sprintf("%s maintenance is due", tr.Code),
				TrainCode: tr.Code,
				Severity:  4,
			})
		}
		if !tr.AvailableForService {
			out = append(out, domain.Alert{
				Type:      domain.AlertInfo,
				Message:   fmt.Sprintf("%s is not available for service", tr.Code),
				TrainCode: tr.Code,
				Severity:  2,
			})
		}
		if tr.Telemetry.OpenWorkOrders > 0 {
			out = append(out, domain.Alert{
				Type:      domain.AlertWarning,
				Message:   fmt.Sprintf("%s has %d open work orders", tr.Code, tr.Telemetry.OpenWorkOrders),
				TrainCode: tr.Code,
				Severity:  4,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity > out[j].Severity
	})
	return out
}

func fitnessAlerts(e constraints.Evaluated) []domain.Alert {
	code := e.Train.Code
	switch {
	case e.DaysToExpiry < 0:
		return []domain.Alert{{
			Type:      domain.AlertCritical,
			Message:   fmt.Sprintf("%s fitness certificate has expired", code),
			TrainCode: code,
			Severity:  5,
		}}
	case e.DaysToExpiry <= 3:
		return []domain.Alert{{
			Type:      domain.AlertCritical,
			Message:   fmt.Sprintf("%s fitness certificate expires in %d days", code, e.DaysToExpiry),
			TrainCode: code,
			Severity:  5,
		}}
	case e.DaysToExpiry <= 7:
		return []domain.Alert{{
			Type:      domain.AlertWarning,
			Message:   fmt.Sprintf("%s fitness certificate expires in %d days", code, e.DaysToExpiry),
			TrainCode: code,
			Severity:  3,
		}}
	default:
		return nil
	}
}
