package optimizeradapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kochimetro/induction-engine/internal/domain"
	"github.com/kochimetro/induction-engine/internal/optimizer"
	"github.com/kochimetro/induction-engine/internal/platform/logger"
)

func fleetOf3() []domain.Train {
	mk := func(code string, mileage int64, priority int, hasBranding bool) domain.Train {
		return domain.Train{
			ID:     uuid.New(),
			Code:   code,
			Fitness: domain.FitnessStatus{Valid: true, Expiry: time.Now().AddDate(1, 0, 0)},
			Maintenance:         domain.MaintenanceInfo{Status: domain.MaintenanceOperational},
			Cleaning:            domain.CleaningInfo{Status: domain.CleaningClean},
			CurrentMileage:      mileage,
			AvailableForService: true,
			Branding:            domain.BrandingInfo{HasBranding: hasBranding, Priority: priority},
		}
	}
	return []domain.Train{
		mk("TS-01", 5000, 3, true),
		mk("TS-02", 5200, 0, false),
		mk("TS-03", 4800, 5, true),
	}
}

func TestAdapter_NoBaseURLUsesLocal(t *testing.T) {
	a := New("", time.Second, 0, logger.NewNop())
	out := a.Run(context.Background(), optimizer.Input{Trains: fleetOf3(), Now: time.Now()})
	if out.ModelInfo.Algorithm != optimizer.Algorithm {
		t.Fatalf("expected local algorithm, got %s", out.ModelInfo.Algorithm)
	}
	if len(out.RankedTrains) != 3 {
		t.Fatalf("expected 3 ranked trains, got %d", len(out.RankedTrains))
	}
}

func TestAdapter_UnreachableHostFallsBackToLocal(t *testing.T) {
	a := New("http://127.0.0.1:1", 200*time.Millisecond, 0, logger.NewNop())
	out := a.Run(context.Background(), optimizer.Input{Trains: fleetOf3(), Now: time.Now()})
	if out.ModelInfo.Algorithm != optimizer.Algorithm {
		t.Fatalf("expected fallback to local algorithm, got %s", out.ModelInfo.Algorithm)
	}
}

func TestAdapter_MalformedResponseFallsBackToLocal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"not":"an optimizer output"}`))
	}))
	defer srv.Close()

	a := New(srv.URL, time.Second, 0, logger.NewNop())
	out := a.Run(context.Background(), optimizer.Input{Trains: fleetOf3(), Now: time.Now()})
	if out.ModelInfo.Algorithm != optimizer.Algorithm {
		t.Fatalf("expected fallback to local algorithm on malformed body, got %s", out.ModelInfo.Algorithm)
	}
}

func TestAdapter_WellFormedRemoteResponseIsReturnedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := responseBody{
			RankedTrains: []domain.RankedEntry{
				{TrainRef: domain.TrainRef{Code: "TS-03"}, Rank: 1, Reasoning: "remote-decided", ConfidenceScore: 90},
			},
			Metrics:   domain.OptimizationMetrics{TotalTrainsEvaluated: 3, ConstraintsSatisfied: 1},
			ModelInfo: domain.AIModelInfo{Version: "remote-1.0", Algorithm: "Remote-LP"},
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	a := New(srv.URL, time.Second, 0, logger.NewNop())
	out := a.Run(context.Background(), optimizer.Input{Trains: fleetOf3(), Now: time.Now()})
	if out.ModelInfo.Algorithm != "Remote-LP" {
		t.Fatalf("expected remote algorithm passthrough, got %s", out.ModelInfo.Algorithm)
	}
	if len(out.RankedTrains) != 1 || out.RankedTrains[0].Reasoning != "remote-decided" {
		t.Fatalf("expected remote ranking passed through verbatim, got %+v", out.RankedTrains)
	}
}

func TestAdapter_RateLimiterThrottlesButDoesNotBreakCorrectness(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := responseBody{ModelInfo: domain.AIModelInfo{Version: "remote-1.0", Algorithm: "Remote-LP"}}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	a := New(srv.URL, time.Second, 1000, logger.NewNop())
	out := a.Run(context.Background(), optimizer.Input{Trains: fleetOf3(), Now: time.Now()})
	if out.ModelInfo.Algorithm != "Remote-LP" {
		t.Fatalf("expected remote algorithm, got %s", out.ModelInfo.Algorithm)
	}
}
