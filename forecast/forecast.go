// Package forecast runs Monte Carlo batches of a single matchup and
// aggregates the outcomes into win probabilities and score statistics.
package forecast

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"league-engine/models"
	"league-engine/simulation"
)

const (
	DefaultRuns    = 1000
	DefaultWorkers = 4
	MaxRuns        = 100000
)

// Result aggregates a batch of simulated games between two teams.
type Result struct {
	RunID      string    `json:"run_id"`
	HomeTeamID string    `json:"home_team_id"`
	AwayTeamID string    `json:"away_team_id"`
	Runs       int       `json:"runs"`
	StartedAt  time.Time `json:"started_at"`
	ElapsedMS  int64     `json:"elapsed_ms"`

	HomeWins    int     `json:"home_wins"`
	AwayWins    int     `json:"away_wins"`
	HomeWinProb float64 `json:"home_win_prob"`
	AwayWinProb float64 `json:"away_win_prob"`

	HomePointsMean   float64 `json:"home_points_mean"`
	AwayPointsMean   float64 `json:"away_points_mean"`
	HomePointsStdDev float64 `json:"home_points_stddev"`
	AwayPointsStdDev float64 `json:"away_points_stddev"`
	MarginMean       float64 `json:"margin_mean"`
	OvertimeRate     float64 `json:"overtime_rate"`

	HomeScores map[int]int `json:"home_scores"`
	AwayScores map[int]int `json:"away_scores"`
}

// Forecaster fans simulation runs out across a fixed worker pool. Each worker
// owns its own random source and engine, so workers never contend.
type Forecaster struct {
	runs    int
	workers int
	seed    int64
	logger  *logrus.Logger
}

// New builds a forecaster. Zero or negative runs/workers fall back to the
// defaults; runs is capped at MaxRuns. A zero seed derives one from the clock.
func New(runs, workers int, seed int64, logger *logrus.Logger) *Forecaster {
	if runs <= 0 {
		runs = DefaultRuns
	}
	if runs > MaxRuns {
		runs = MaxRuns
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Forecaster{runs: runs, workers: workers, seed: seed, logger: logger}
}

type gameSample struct {
	homePoints int
	awayPoints int
	overtime   bool
}

// Forecast simulates the matchup f.runs times and aggregates the results.
// It returns early with ctx.Err() if the context is cancelled mid-batch.
func (f *Forecaster) Forecast(ctx context.Context, home, away *models.Team) (*Result, error) {
	if home == nil || away == nil {
		return nil, fmt.Errorf("forecast requires two teams")
	}
	if home.ID == away.ID {
		return nil, fmt.Errorf("forecast requires two distinct teams")
	}

	start := time.Now()
	runID := uuid.New().String()

	f.logger.WithFields(logrus.Fields{
		"run_id":  runID,
		"home":    home.Name,
		"away":    away.Name,
		"runs":    f.runs,
		"workers": f.workers,
	}).Info("Starting forecast batch")

	jobs := make(chan int, f.runs)
	samples := make(chan gameSample, f.runs)

	var wg sync.WaitGroup
	for w := 0; w < f.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(f.seed + int64(workerID)*7919))
			engine := simulation.NewEngine(rng, nil)
			for range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				out := engine.Simulate(home, away)
				samples <- gameSample{
					homePoints: out.Home.Points,
					awayPoints: out.Away.Points,
					overtime:   out.Overtimes > 0,
				}
			}
		}(w)
	}

	for i := 0; i < f.runs; i++ {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(samples)
	}()

	res := &Result{
		RunID:      runID,
		HomeTeamID: home.ID,
		AwayTeamID: away.ID,
		StartedAt:  start,
		HomeScores: make(map[int]int),
		AwayScores: make(map[int]int),
	}

	var homePts, awayPts []float64
	overtimes := 0
	for s := range samples {
		res.Runs++
		homePts = append(homePts, float64(s.homePoints))
		awayPts = append(awayPts, float64(s.awayPoints))
		res.HomeScores[s.homePoints]++
		res.AwayScores[s.awayPoints]++
		if s.homePoints > s.awayPoints {
			res.HomeWins++
		} else {
			res.AwayWins++
		}
		if s.overtime {
			overtimes++
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("forecast %s cancelled after %d runs: %w", runID, res.Runs, err)
	}
	if res.Runs == 0 {
		return nil, fmt.Errorf("forecast %s produced no samples", runID)
	}

	n := float64(res.Runs)
	res.HomeWinProb = float64(res.HomeWins) / n
	res.AwayWinProb = float64(res.AwayWins) / n
	res.HomePointsMean = stat.Mean(homePts, nil)
	res.AwayPointsMean = stat.Mean(awayPts, nil)
	res.HomePointsStdDev = stat.StdDev(homePts, nil)
	res.AwayPointsStdDev = stat.StdDev(awayPts, nil)
	res.MarginMean = res.HomePointsMean - res.AwayPointsMean
	res.OvertimeRate = float64(overtimes) / n
	res.ElapsedMS = time.Since(start).Milliseconds()

	f.logger.WithFields(logrus.Fields{
		"run_id":        runID,
		"runs":          res.Runs,
		"home_win_prob": res.HomeWinProb,
		"elapsed_ms":    res.ElapsedMS,
	}).Info("Forecast batch complete")

	return res, nil
}
