package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"margo/internal/domain/pyramid"
	"margo/internal/storage"
	"margo/internal/usecase/match"
)

func main() {
	games := flag.Int("n", 10, "number of matches to play")
	size := flag.Int("size", 5, "pyramid base size")
	seed := flag.Int64("seed", 1, "random seed")
	maxPlies := flag.Int("plies", 500, "ply limit per match")
	workers := flag.Int("workers", runtime.NumCPU(), "matches played in parallel")
	statsDir := flag.String("stats", "", "badger directory for cumulative statistics; empty disables")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	log := logger.Sugar()
	defer log.Sync()

	geom, err := pyramid.NewGeometry(*size)
	if err != nil {
		log.Errorw("bad board size", "error", err)
		os.Exit(2)
	}

	if *workers < 1 {
		*workers = 1
	}

	var store *storage.Storage
	if *statsDir != "" {
		store, err = storage.Open(*statsDir)
		if err != nil {
			log.Errorw("stats store unavailable", "error", err)
			os.Exit(2)
		}
	}

	var (
		mu     sync.Mutex
		failed int
	)
	g := errgroup.Group{}
	g.SetLimit(*workers)
	for i := 0; i < *games; i++ {
		// each match owns its generator so results do not depend on scheduling
		r := rand.New(rand.NewSource(*seed + int64(i)))
		g.Go(func() error {
			m := match.New(geom)
			plies, err := play(m, r, *maxPlies)
			st := m.State()
			if store != nil {
				res := storage.MatchResult{
					Size:     *size,
					Finished: st.Status == match.StatusFinished,
					Failed:   err != nil,
					Winner:   st.Winner,
					Plies:    plies,
					Captures: st.Captures,
				}
				if serr := store.RecordMatch(res); serr != nil {
					log.Errorw("stats not recorded", "match", m.ID(), "error", serr)
				}
			}
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				log.Errorw("match broke an invariant", "match", m.ID(), "ply", plies, "error", err)
				return nil
			}
			log.Infow("match done",
				"match", m.ID(),
				"status", st.Status,
				"plies", plies,
				"winner", st.Winner,
				"score", st.Score,
				"captures", st.Captures,
			)
			return nil
		})
	}
	_ = g.Wait()

	if store != nil {
		if stats, err := store.LoadStats(*size); err == nil {
			log.Infow("cumulative statistics",
				"size", stats.Size,
				"matches", stats.Matches,
				"wins", stats.Wins,
				"draws", stats.Draws,
				"unfinished", stats.Unfinished,
				"failures", stats.Failures,
				"avg_plies", stats.AveragePlies(),
			)
		}
		if err := store.Close(); err != nil {
			log.Errorw("stats store close", "error", err)
		}
	}

	if failed > 0 {
		log.Errorf("%d of %d matches failed", failed, *games)
		os.Exit(1)
	}
}

// play moves at random until the match ends or the ply limit is hit,
// checking the position after every ply.
func play(m *match.Match, r *rand.Rand, maxPlies int) (int, error) {
	for ply := 0; ply < maxPlies; ply++ {
		if m.Status() == match.StatusFinished {
			return ply, nil
		}
		side := m.ToMove()
		legal := m.Legal()
		if len(legal) == 0 {
			if err := m.Pass(side); err != nil {
				return ply, fmt.Errorf("pass refused with no legal placement: %w", err)
			}
		} else {
			c := legal[r.Intn(len(legal))]
			if _, err := m.Play(side, c); err != nil {
				return ply, fmt.Errorf("legal placement %s rejected: %w", c, err)
			}
		}
		if err := check(m); err != nil {
			return ply, err
		}
	}
	return maxPlies, nil
}

func check(m *match.Match) error {
	e, err := m.Position().Restore()
	if err != nil {
		return err
	}
	if dead := e.Board().DeadGroups(); len(dead) > 0 {
		return fmt.Errorf("unresolved groups without liberties: %v", dead)
	}
	return nil
}
