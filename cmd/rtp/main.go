// Command rtp prints the analytic and simulated return of every board.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/exp/slog"

	"github.com/xtding233/plinko-backend/internal/engine"
	"github.com/xtding233/plinko-backend/internal/game"
	"github.com/xtding233/plinko-backend/internal/physics"
	"github.com/xtding233/plinko-backend/internal/plinko"
	"github.com/xtding233/plinko-backend/internal/wallet"
)

type options struct {
	rows      int
	risk      string
	trials    int
	drops     int
	seed      uint64
	configDir string
	profile   string
	asJSON    bool
}

type row struct {
	plinko.Analysis
	Selector plinko.Stats  `json:"selector"`
	Physics  *plinko.Stats `json:"physics,omitempty"`
	Forced   int64         `json:"forced,omitempty"`
}

func main() {
	var o options
	flag.IntVar(&o.rows, "rows", 0, "Only this row count (0 = all)")
	flag.StringVar(&o.risk, "risk", "", "Only this risk level (empty = all)")
	flag.IntVar(&o.trials, "trials", 200_000, "Selector samples per board")
	flag.IntVar(&o.drops, "drops", 0, "Full physics drops per board (0 skips)")
	flag.Uint64Var(&o.seed, "seed", 1, "RNG seed")
	flag.StringVar(&o.configDir, "config-dir", "", "Load profiles from this config directory")
	flag.StringVar(&o.profile, "profile", "default", "Profile overlay when -config-dir is set")
	flag.BoolVar(&o.asJSON, "json", false, "Print JSON instead of a table")
	flag.Parse()

	if err := run(o, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "rtp: %v\n", err)
		os.Exit(1)
	}
}

func run(o options, out io.Writer) error {
	profiles, tuning := plinko.DefaultProfiles(), physics.DefaultTuning()
	if o.configDir != "" {
		_, s, err := game.NewLoader(o.configDir).Resolve(o.profile, game.Overrides{})
		if err != nil {
			return err
		}
		profiles, tuning = s.Profiles, s.Tuning
	}

	rowsList := make([]int, 0, plinko.MaxRows-plinko.MinRows+1)
	for n := plinko.MinRows; n <= plinko.MaxRows; n++ {
		if o.rows == 0 || o.rows == n {
			rowsList = append(rowsList, n)
		}
	}
	risks := plinko.Risks
	if o.risk != "" {
		r, err := plinko.ParseRisk(o.risk)
		if err != nil {
			return err
		}
		risks = []plinko.Risk{r}
	}
	if len(rowsList) == 0 {
		return fmt.Errorf("%w: %d", plinko.ErrInvalidRows, o.rows)
	}

	rng := plinko.NewSeededRNG(o.seed)
	var rows []row
	for _, risk := range risks {
		for _, n := range rowsList {
			cfg := plinko.BoardConfig{Rows: n, Risk: risk}
			a, err := plinko.Analyze(cfg, profiles[risk])
			if err != nil {
				return err
			}
			sel, err := plinko.SimulateSelector(a.Table, o.trials, rng)
			if err != nil {
				return err
			}
			r := row{Analysis: a, Selector: sel}
			if o.drops > 0 {
				st, forced, err := simulateDrops(cfg, profiles, tuning, o.drops, o.seed)
				if err != nil {
					return err
				}
				r.Physics, r.Forced = &st, forced
			}
			rows = append(rows, r)
		}
	}

	if o.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "risk\trows\tbinomial_ev\tselector_rtp\tsimulated\tp99\tphysics\tforced\ttable")
	for _, r := range rows {
		phys := "-"
		if r.Physics != nil {
			phys = fmt.Sprintf("%.4f", r.Physics.Mean)
		}
		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f\t%.4f\t%g\t%s\t%d\t%v\n",
			r.Risk, r.Rows, r.BinomialEV, r.SelectorRTP, r.Selector.Mean, r.Selector.P99, phys, r.Forced, r.Table)
	}
	return tw.Flush()
}

// simulateDrops runs full drops through the engine one at a time and
// reports the payout multiple of each.
func simulateDrops(cfg plinko.BoardConfig, ps plinko.Profiles, t physics.Tuning, drops int, seed uint64) (plinko.Stats, int64, error) {
	const wager = plinko.Amount(100)
	acct := wallet.NewAccount(wager * plinko.Amount(drops))
	eng, err := engine.New(engine.Config{
		Board:    cfg,
		Profiles: ps,
		Tuning:   t,
		Wallet:   acct,
		RNG:      plinko.NewSeededRNG(seed),
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		return plinko.Stats{}, 0, err
	}

	var payout plinko.Amount
	eng.Subscribe(func(ev engine.Event) {
		if ev.Kind == engine.EventSettled {
			payout = ev.Payout
		}
	})

	st, err := plinko.RunMonteCarlo(drops, func() (float64, error) {
		if _, err := eng.Drop(wager); err != nil {
			return 0, err
		}
		for eng.Falling() > 0 {
			eng.Step(16 * time.Millisecond)
		}
		return float64(payout) / float64(wager), nil
	})
	return st, eng.Stats().Forced, err
}
